package community

import (
	"context"

	"tentacles/pkg/errors"
)

// Offline backs the page when the bot runs without a community account.
// It can never authenticate, so the page renders in preview mode.
type Offline struct{}

var (
	_ Authenticator = Offline{}
	_ Models        = Offline{}
)

func (Offline) CanAuthenticate() bool { return false }

func (Offline) LoggedInEmail(context.Context) (string, error) {
	return "", errors.ErrAuthenticationRequired
}

func (Offline) SupportRole() string { return "" }
func (Offline) IsDonor() bool       { return false }

func (Offline) WaitForLogin(context.Context) error { return nil }

func (Offline) CloudStrategies(context.Context, Authenticator) ([]Strategy, error) {
	return nil, nil
}

func (Offline) CurrentBotsStats(context.Context) (BotsStats, error) { return BotsStats{}, nil }
func (Offline) AllUserBots(context.Context) ([]Bot, error)          { return nil, nil }
func (Offline) SelectedUserBot(context.Context) (*Bot, error)       { return nil, nil }
func (Offline) CanLogout() bool                                     { return false }
func (Offline) CanSelectBot() bool                                  { return false }
