package community

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
)

// Authenticator is the community account session of the bot.
type Authenticator interface {
	// CanAuthenticate is false when the bot runs without community access.
	CanAuthenticate() bool
	// LoggedInEmail returns errors.ErrAuthenticationRequired when nobody is logged in.
	LoggedInEmail(ctx context.Context) (string, error)
	SupportRole() string
	IsDonor() bool
}

// Models exposes the community data rendered by the page.
type Models interface {
	// WaitForLogin blocks while a login is being processed.
	WaitForLogin(ctx context.Context) error
	CloudStrategies(ctx context.Context, auth Authenticator) ([]Strategy, error)
	CurrentBotsStats(ctx context.Context) (BotsStats, error)
	AllUserBots(ctx context.Context) ([]Bot, error)
	SelectedUserBot(ctx context.Context) (*Bot, error)
	CanLogout() bool
	CanSelectBot() bool
}

// Strategy is a strategy published on the community cloud.
type Strategy struct {
	ID       string
	Name     string
	Category string
	Author   string
	Readers  int64
}

// Bot is one of the user's registered bots.
type Bot struct {
	ID   string
	Name string
}

// BotsStats are the community wide running bot counters.
type BotsStats struct {
	TotalBots   int64
	RunningBots int64
	TotalTrades int64
	UpdatedAt   time.Time
}

// BotsStatsView is the humanized form shown on the page.
type BotsStatsView struct {
	TotalBots   string
	RunningBots string
	TotalTrades string
	UpdatedAgo  string
}

func (s BotsStats) humanized() BotsStatsView {
	view := BotsStatsView{
		TotalBots:   humanize.Comma(s.TotalBots),
		RunningBots: humanize.Comma(s.RunningBots),
		TotalTrades: humanize.Comma(s.TotalTrades),
	}
	if !s.UpdatedAt.IsZero() {
		view.UpdatedAgo = humanize.Time(s.UpdatedAt)
	}
	return view
}
