package server

import (
	"context"
	"crypto/sha512"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/config"
	"github.com/eskrenkovic/ludo-server/internal/modules/account"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/commands"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/queries"
	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/dispatch"
	"github.com/eskrenkovic/ludo-server/internal/modules/lobby"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &GameServer{}

// GameServer acts as the composition root for the application.
type GameServer struct {
	conf   config.Config
	logger *zap.Logger
	db     *sqlx.DB

	listener net.Listener
	admin    *http.Server

	registry *connection.Registry
	workers  []worker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once
}

type worker struct {
	name string
	run  func(context.Context) error
}

func NewGameServer(conf config.Config) (*GameServer, error) {
	baseCtx, cancel := context.WithCancel(context.Background())

	db, err := sqlx.Connect("postgres", conf.DatabaseURL)
	if err != nil {
		cancel()
		return nil, err
	}

	if err := migrate.Run(baseCtx, db.DB, conf.MigrationsPath); err != nil {
		cancel()
		_ = db.Close()
		return nil, err
	}

	if err := registerHandlers(db, conf.Logger); err != nil {
		cancel()
		_ = db.Close()
		return nil, err
	}

	logger := conf.Logger

	inbound := connection.NewQueue[protocol.Inbound](conf.Queues.Inbound)
	outbound := connection.NewQueue[protocol.Envelope](conf.Queues.Outbound)
	disconnects := connection.NewQueue[string](conf.Queues.Disconnect)

	registry := connection.NewRegistry(disconnects, logger)
	rooms := chat.NewRooms()
	games := lobby.NewGames()
	store := chat.NewRepository(db)

	if err := store.SaveRoom(baseCtx, chat.GlobalRoom); err != nil {
		cancel()
		_ = db.Close()
		return nil, err
	}

	dispatcher := dispatch.NewDispatcher(
		registry,
		rooms,
		games,
		store,
		account.NewService(),
		inbound,
		outbound,
		logger,
	)

	ingress := connection.NewIngress(registry, inbound, conf.PollInterval, logger)
	egress := connection.NewEgress(registry, outbound, logger)
	liveness := connection.NewLiveness(registry, conf.PingInterval, logger)
	reaper := connection.NewReaper(registry, disconnects, dispatcher, logger)

	admin := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(conf.AdminPort)),
		Handler:           newAdminRouter(baseCtx, dispatcher, registry, db),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &GameServer{
		conf:     conf,
		logger:   logger.With(zap.String("component", "server")),
		db:       db,
		admin:    admin,
		registry: registry,
		workers: []worker{
			{name: "ingress", run: ingress.Run},
			{name: "dispatcher", run: dispatcher.Run},
			{name: "egress", run: egress.Run},
			{name: "liveness", run: liveness.Run},
			{name: "reaper", run: reaper.Run},
		},
		ctx:    baseCtx,
		cancel: cancel,
	}, nil
}

// Listen binds the game port. Start calls it when it has not been called yet.
func (s *GameServer) Listen() error {
	if s.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.conf.ListenAddr)
	if err != nil {
		return err
	}
	s.listener = listener

	return nil
}

// Addr is the bound game address, nil before Listen.
func (s *GameServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start serves game clients and blocks until Stop is called or the listener
// fails.
func (s *GameServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	listener := s.listener

	for _, w := range s.workers {
		w := w
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := w.run(s.ctx); err != nil {
				s.logger.Error("worker stopped", zap.String("worker", w.name), zap.Error(err))
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin server stopped", zap.Error(err))
		}
	}()

	s.logger.Info(
		"server started",
		zap.String("listen_addr", listener.Addr().String()),
		zap.String("admin_addr", s.admin.Addr),
	)

	return s.accept(listener)
}

func (s *GameServer) accept(listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return err
		}

		c := s.registry.Register(conn)
		s.logger.Info(
			"connection accepted",
			zap.String("session_id", c.SessionID),
			zap.String("remote_addr", c.RemoteAddr()),
		)
	}
}

func (s *GameServer) Stop() error {
	var err error

	s.stopOnce.Do(func() {
		s.cancel()

		if s.listener != nil {
			err = errors.Join(err, s.listener.Close())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, s.admin.Shutdown(shutdownCtx))

		s.wg.Wait()

		for _, c := range s.registry.Snapshot() {
			_ = c.Close()
		}

		err = errors.Join(err, s.db.Close())

		_ = s.logger.Sync()
	})

	return err
}

var (
	registerOnce sync.Once
	registerErr  error
)

// registerHandlers wires the account slice into the process-wide mediator.
// The mediator is global, so this happens once per process.
func registerHandlers(db *sqlx.DB, logger *zap.Logger) error {
	registerOnce.Do(func() {
		registerErr = doRegisterHandlers(db, logger)
	})

	return registerErr
}

func doRegisterHandlers(db *sqlx.DB, logger *zap.Logger) error {
	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	passwordHasher := domain.NewPasswordHasher(sha512.New)

	// account commands

	err := mediator.RegisterRequestHandler[commands.LoginCommand, commands.LoginResponse](
		commands.NewLoginCommandHandler(db, passwordHasher),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[commands.LoginWithTokenCommand, commands.LoginResponse](
		commands.NewLoginWithTokenCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[commands.IssueSessionTokenCommand, commands.IssueSessionTokenResponse](
		commands.NewIssueSessionTokenCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[commands.RegisterCommand, core.Unit](
		commands.NewRegisterCommandHandler(db, passwordHasher),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[commands.EditProfileCommand, commands.EditProfileResponse](
		commands.NewEditProfileCommandHandler(db, passwordHasher),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[commands.RecordGameResultCommand, core.Unit](
		commands.NewRecordGameResultCommandHandler(db),
	)
	if err != nil {
		return err
	}

	// account queries

	err = mediator.RegisterRequestHandler[queries.GetProfileQuery, domain.Profile](
		queries.NewGetProfileQueryHandler(db),
	)
	if err != nil {
		return err
	}

	return mediator.RegisterRequestHandler[queries.GetLeaderboardQuery, domain.Leaderboard](
		queries.NewGetLeaderboardQueryHandler(db),
	)
}
