package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/modules/account"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/commands"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/lobby"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Accounts is the account and profile store. Every call may fail; failures
// carrying a reason code are business rule rejections.
type Accounts interface {
	Login(ctx context.Context, username, password string) (account.Identity, error)
	LoginWithToken(ctx context.Context, token string) (account.Identity, error)
	IssueSessionToken(ctx context.Context, userID string) (string, error)
	Register(ctx context.Context, username, password string) error
	Profile(ctx context.Context, userID string) (domain.Profile, error)
	ProfileByDisplayName(ctx context.Context, displayName string) (domain.Profile, error)
	EditProfile(ctx context.Context, userID, displayName, password, imageString string) (commands.EditProfileResponse, error)
	Leaderboard(ctx context.Context) (domain.Leaderboard, error)
	RecordGameResult(ctx context.Context, playerIDs []string, winnerID string) error
}

var _ Accounts = (*account.Service)(nil)

var (
	_ protocol.Handler   = (*Dispatcher)(nil)
	_ connection.Cleaner = (*Dispatcher)(nil)
)

// Dispatcher is the single consumer of the inbound queue. It owns all chat
// and game mutation: requests and disconnect cleanup run one at a time under
// mu, and the responses they produce are flushed to the outbound queue once
// the handler returns.
type Dispatcher struct {
	registry *connection.Registry
	rooms    *chat.Rooms
	games    *lobby.Games
	store    chat.Store
	accounts Accounts

	inbound  *connection.Queue[protocol.Inbound]
	outbound *connection.Queue[protocol.Envelope]

	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending []protocol.Envelope
}

func NewDispatcher(
	registry *connection.Registry,
	rooms *chat.Rooms,
	games *lobby.Games,
	store chat.Store,
	accounts Accounts,
	inbound *connection.Queue[protocol.Inbound],
	outbound *connection.Queue[protocol.Envelope],
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		games:    games,
		store:    store,
		accounts: accounts,
		inbound:  inbound,
		outbound: outbound,
		logger:   logger.With(zap.String("component", "dispatcher")),
		now:      time.Now,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		in, err := d.inbound.Take(ctx)
		if err != nil {
			return nil
		}

		d.Handle(ctx, in)
	}
}

// Handle processes one request to completion.
func (d *Dispatcher) Handle(ctx context.Context, in protocol.Inbound) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, _ := d.registry.LookupUserID(in.SessionID)

	ctx = core.WithCorrelationID(ctx, uuid.NewString())
	ctx = core.WithSession(ctx, core.ContextSession{SessionID: in.SessionID, UserID: userID})

	if claimant, ok := in.Request.(protocol.Claimant); ok {
		if userID == "" || claimant.ClaimedUserID() != userID {
			d.logger.Warn(
				"dropping request with mismatched user id",
				zap.String("action", in.Request.Action()),
				zap.String("session_id", in.SessionID),
				zap.String("claimed_user_id", claimant.ClaimedUserID()),
			)
			return
		}
	}

	protocol.Dispatch(ctx, in.SessionID, in.Request, d)
	d.flush(ctx)
}

// Disconnect removes a departed user from every room and game.
func (d *Dispatcher) Disconnect(ctx context.Context, userID, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cleanup(ctx, userID, displayName)
	d.flush(ctx)
}

func (d *Dispatcher) send(sessionID string, r protocol.Response) {
	if sessionID == "" {
		return
	}

	d.pending = append(d.pending, protocol.Envelope{RecipientSessionID: sessionID, Response: r})
}

// sendToUser queues r for the user's current session. Offline users are
// skipped.
func (d *Dispatcher) sendToUser(userID string, r protocol.Response) {
	if sessionID, ok := d.registry.LookupSessionID(userID); ok {
		d.send(sessionID, r)
	}
}

func (d *Dispatcher) sendToUsers(userIDs []string, r protocol.Response) {
	for _, userID := range userIDs {
		d.sendToUser(userID, r)
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	pending := d.pending
	d.pending = nil

	for i, envelope := range pending {
		if err := d.outbound.Put(ctx, envelope); err != nil {
			d.logger.Warn(
				"dropping responses on shutdown",
				zap.Int("dropped", len(pending)-i),
				zap.Error(err),
			)
			return
		}
	}
}

// displayName resolves the name the user is currently known by.
func (d *Dispatcher) displayName(userID string) string {
	name, _ := d.registry.LookupDisplayName(userID)
	return name
}

func (d *Dispatcher) internalError(sessionID string, err error, msg string) {
	d.logger.Error(msg, zap.String("session_id", sessionID), zap.Error(err))
	d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonInternalError})
}
