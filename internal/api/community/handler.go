// Package community serves the community page of the web interface.
package community

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

const loginPath = "community_login"

// Flash is a one-off message shown to the user.
type Flash struct {
	Message  string
	Category string
}

// Flasher carries flash messages across a redirect. Without one, messages
// are only rendered on the current page.
type Flasher interface {
	Flash(w http.ResponseWriter, r *http.Request, f Flash)
}

// Config tunes the community page.
type Config struct {
	// LoginWait bounds how long a request waits for a pending login.
	LoginWait time.Duration
	// PreviewWhenUnavailable renders a preview when the bot cannot authenticate.
	PreviewWhenUnavailable bool
}

// Handler renders /community.
type Handler struct {
	auth    Authenticator
	models  Models
	flasher Flasher
	cfg     Config
	log     *logger.Logger
}

// NewHandler creates the community page handler. flasher may be nil.
func NewHandler(auth Authenticator, models Models, flasher Flasher, cfg Config, log *logger.Logger) *Handler {
	if cfg.LoginWait <= 0 {
		cfg.LoginWait = 5 * time.Second
	}
	if log == nil {
		log = logger.Get()
	}
	return &Handler{
		auth:    auth,
		models:  models,
		flasher: flasher,
		cfg:     cfg,
		log:     log.WithComponent("community"),
	}
}

// Register mounts the community routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/community", h.HandleCommunity)
	mux.HandleFunc("/community_metrics", h.HandleMetrics)
}

type pageData struct {
	Flashes      []Flash
	Preview      bool
	Email        string
	Role         string
	IsDonor      bool
	Strategies   []Strategy
	BotsStats    BotsStatsView
	UserBots     []Bot
	SelectedBot  *Bot
	CanLogout    bool
	CanSelectBot bool
}

// HandleCommunity renders the page, or redirects to the login page when
// nobody is logged in and a preview is not allowed.
func (h *Handler) HandleCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{
		Preview: h.cfg.PreviewWhenUnavailable && !h.auth.CanAuthenticate(),
	}

	email, err := h.loggedInEmail(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrAuthenticationRequired), errors.Is(err, errors.ErrCommunityUnavailable):
		h.log.Debugw("Community account not available", "error", err)
	default:
		f := Flash{Message: fmt.Sprintf("Error when contacting the community server: %v", err), Category: "error"}
		data.Flashes = append(data.Flashes, f)
		if h.flasher != nil {
			h.flasher.Flash(w, r, f)
		}
	}

	if email == "" && !data.Preview {
		metrics.RecordCommunityPageView("login_redirect")
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}
	data.Email = email

	if err := h.load(ctx, &data); err != nil {
		metrics.RecordCommunityPageView("error")
		h.log.Errorw("Failed to load community page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		metrics.RecordCommunityPageView("error")
		h.log.Errorw("Failed to render community page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	outcome := "rendered"
	if data.Preview && email == "" {
		outcome = "preview"
	}
	metrics.RecordCommunityPageView(outcome)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleMetrics is disabled and sends users home.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) loggedInEmail(ctx context.Context) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, h.cfg.LoginWait)
	defer cancel()

	if err := h.models.WaitForLogin(waitCtx); err != nil {
		return "", err
	}
	return h.auth.LoggedInEmail(ctx)
}

func (h *Handler) load(ctx context.Context, data *pageData) error {
	var err error
	data.Role = h.auth.SupportRole()
	data.IsDonor = h.auth.IsDonor()

	if data.Strategies, err = h.models.CloudStrategies(ctx, h.auth); err != nil {
		return errors.Wrap(err, "cloud strategies")
	}
	stats, err := h.models.CurrentBotsStats(ctx)
	if err != nil {
		return errors.Wrap(err, "bots stats")
	}
	data.BotsStats = stats.humanized()
	if data.UserBots, err = h.models.AllUserBots(ctx); err != nil {
		return errors.Wrap(err, "user bots")
	}
	if data.SelectedBot, err = h.models.SelectedUserBot(ctx); err != nil {
		return errors.Wrap(err, "selected bot")
	}
	data.CanLogout = h.models.CanLogout()
	data.CanSelectBot = h.models.CanSelectBot()
	return nil
}
