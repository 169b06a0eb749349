// Package server renders the review page and hosts one view controller per browser.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	"github.com/spacesedan/reviewsense/internal/models"
	"github.com/spacesedan/reviewsense/internal/view"
)

type Options struct {
	Predictor   view.Predictor
	IdleTimeout time.Duration
	// PredictorHealthy is reported by /healthz; nil means always healthy.
	PredictorHealthy *atomic.Bool
}

type Server struct {
	echo        *echo.Echo
	sessions    *sessionStore
	idleTimeout time.Duration
	healthy     *atomic.Bool
	scheduler   gocron.Scheduler
}

func New(opts Options) (*Server, error) {
	renderer, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	s := &Server{
		echo: e,
		sessions: newSessionStore(func() *view.Controller {
			return view.NewController(opts.Predictor)
		}),
		idleTimeout: opts.IdleTimeout,
		healthy:     opts.PredictorHealthy,
	}

	e.GET("/", s.handleIndex)
	e.POST("/review", s.handleReview)
	e.POST("/analyze", s.handleAnalyze)
	e.GET("/state", s.handleState)
	e.GET("/healthz", s.handleHealth)

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// StartSweeper closes idle sessions on a fixed interval.
func (s *Server) StartSweeper(every time.Duration) error {
	if s.idleTimeout <= 0 {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { s.sessions.sweep(s.idleTimeout) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	slog.Info("[UIServer] Session sweeper started",
		slog.Duration("every", every),
		slog.Duration("idle_timeout", s.idleTimeout))
	return nil
}

// Close stops the sweeper and tears down every session, cancelling in-flight predictions.
func (s *Server) Close() {
	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(); err != nil {
			slog.Warn("[UIServer] Scheduler shutdown failed", slog.String("error", err.Error()))
		}
	}
	s.sessions.closeAll()
}

func (s *Server) controllerFor(c echo.Context) *view.Controller {
	var id string
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}

	newID, controller := s.sessions.get(id)
	if newID != id {
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return controller
}

func (s *Server) handleIndex(c echo.Context) error {
	state := s.controllerFor(c).Snapshot()
	return c.Render(http.StatusOK, "index", newPageData(state))
}

// formReview returns the posted review with line breaks as the textarea exposes
// them. Browsers submit textarea newlines as CRLF.
func formReview(c echo.Context) string {
	return strings.ReplaceAll(c.FormValue("review"), "\r\n", "\n")
}

func (s *Server) handleReview(c echo.Context) error {
	controller := s.controllerFor(c)
	controller.SetReview(formReview(c))
	return c.JSON(http.StatusOK, newStateResponse(controller.Snapshot()))
}

func (s *Server) handleAnalyze(c echo.Context) error {
	controller := s.controllerFor(c)
	controller.SetReview(formReview(c))

	if _, ok := controller.Submit(); !ok {
		slog.Debug("[UIServer] Submit ignored",
			slog.Bool("pending", controller.Snapshot().Pending))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, newStateResponse(s.controllerFor(c).Snapshot()))
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.healthy != nil && !s.healthy.Load() {
		return c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "predictor unavailable"})
	}
	return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
