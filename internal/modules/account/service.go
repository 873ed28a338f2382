package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/commands"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/queries"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
)

// Identity is what a successful login binds to a connection.
type Identity struct {
	UserID      string
	DisplayName string
}

// Service sends account requests through the mediator pipeline so every call
// is logged and validated the same way.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Login(ctx context.Context, username, password string) (Identity, error) {
	response, err := mediator.Send[commands.LoginCommand, commands.LoginResponse](
		ctx,
		commands.LoginCommand{Username: username, Password: password},
	)
	if err != nil {
		return Identity{}, withFallbackReason(err, protocol.ReasonLoginFail)
	}

	return Identity{UserID: response.UserID.String(), DisplayName: response.DisplayName}, nil
}

func (s *Service) LoginWithToken(ctx context.Context, token string) (Identity, error) {
	response, err := mediator.Send[commands.LoginWithTokenCommand, commands.LoginResponse](
		ctx,
		commands.LoginWithTokenCommand{Token: token},
	)
	if err != nil {
		return Identity{}, withFallbackReason(err, protocol.ReasonInvalidToken)
	}

	return Identity{UserID: response.UserID.String(), DisplayName: response.DisplayName}, nil
}

func (s *Service) IssueSessionToken(ctx context.Context, userID string) (string, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return "", err
	}

	response, err := mediator.Send[commands.IssueSessionTokenCommand, commands.IssueSessionTokenResponse](
		ctx,
		commands.IssueSessionTokenCommand{UserID: id},
	)
	if err != nil {
		return "", err
	}

	return response.Token.String(), nil
}

func (s *Service) Register(ctx context.Context, username, password string) error {
	_, err := mediator.Send[commands.RegisterCommand, core.Unit](
		ctx,
		commands.RegisterCommand{Username: username, Password: password},
	)
	if err != nil {
		return withFallbackReason(err, protocol.ReasonRegisterFail)
	}

	return nil
}

func (s *Service) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return domain.Profile{}, withFallbackReason(err, protocol.ReasonViewProfileFail)
	}

	return mediator.Send[queries.GetProfileQuery, domain.Profile](ctx, queries.GetProfileQuery{UserID: id})
}

func (s *Service) ProfileByDisplayName(ctx context.Context, displayName string) (domain.Profile, error) {
	profile, err := mediator.Send[queries.GetProfileQuery, domain.Profile](
		ctx,
		queries.GetProfileQuery{DisplayName: displayName},
	)
	if err != nil {
		return domain.Profile{}, withFallbackReason(err, protocol.ReasonViewProfileFail)
	}

	return profile, nil
}

func (s *Service) EditProfile(
	ctx context.Context,
	userID, displayName, password, imageString string,
) (commands.EditProfileResponse, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return commands.EditProfileResponse{}, withFallbackReason(err, protocol.ReasonEditProfileFail)
	}

	return mediator.Send[commands.EditProfileCommand, commands.EditProfileResponse](
		ctx,
		commands.EditProfileCommand{
			UserID:      id,
			DisplayName: displayName,
			Password:    password,
			ImageString: imageString,
		},
	)
}

func (s *Service) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	return mediator.Send[queries.GetLeaderboardQuery, domain.Leaderboard](ctx, queries.GetLeaderboardQuery{})
}

func (s *Service) RecordGameResult(ctx context.Context, playerIDs []string, winnerID string) error {
	winner, err := parseUserID(winnerID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		id, err := parseUserID(playerID)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	_, err = mediator.Send[commands.RecordGameResultCommand, core.Unit](
		ctx,
		commands.RecordGameResultCommand{PlayerIDs: ids, WinnerID: winner},
	)
	return err
}

func parseUserID(userID string) (uuid.UUID, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, core.NewCommandError(400, fmt.Sprintf("invalid user id '%s'", userID))
	}
	return id, nil
}

// withFallbackReason attaches reason to client errors raised before the
// handler ran, such as failed validation.
func withFallbackReason(err error, reason string) error {
	var commandErr core.CommandError
	if !errors.As(err, &commandErr) || commandErr.Reason != nil || commandErr.StatusCode >= 500 {
		return err
	}

	commandErr.Reason = &reason
	return commandErr
}
