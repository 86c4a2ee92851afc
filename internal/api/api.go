// Package api exposes the arena over HTTP: hero registration and sheets,
// content listings, encounter entry and live-session decisions. Handlers
// stay thin; every rule about fighting lives in the combat and encounter
// packages, every rule about persistence in db.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/qiankun/internal/db"
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/game/encounter"
	"github.com/udisondev/qiankun/internal/model"
)

// HeroStore is the slice of hero persistence the handlers need. The db
// package implements it; tests use in-memory fakes.
type HeroStore interface {
	CreateHero(ctx context.Context, h *model.Hero) error
	HeroByName(ctx context.Context, name string) (*model.Hero, error)
	ListHeroes(ctx context.Context) ([]db.HeroSummary, error)
}

// ReportStore serves archived battle reports.
type ReportStore interface {
	RecentByHero(ctx context.Context, name string, limit int) ([]db.StoredReport, error)
}

// SessionManager starts battles and routes prompt answers to them.
type SessionManager interface {
	StartHunt(ctx context.Context, heroNames, beastKeys []string) (string, error)
	StartDuel(ctx context.Context, challengerName, opponentName string) (string, error)
	SessionState(id string) (*encounter.State, error)
	SubmitDecision(id, heroName string, d combat.Decision) error
}

// Handler groups the HTTP handlers and their dependencies.
type Handler struct {
	heroes   HeroStore
	reports  ReportStore
	sessions SessionManager
}

// NewHandler wires the handlers to their stores and session manager.
func NewHandler(heroes HeroStore, reports ReportStore, sessions SessionManager) *Handler {
	return &Handler{heroes: heroes, reports: reports, sessions: sessions}
}

// Router builds the gin engine with every route registered. Reading routes
// are public; anything that acts on behalf of a hero requires its token.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLog())

	api := router.Group("/api")
	{
		api.POST("/heroes", h.RegisterHero)
		api.GET("/heroes", h.ListHeroes)
		api.GET("/heroes/:name", h.GetHero)
		api.GET("/heroes/:name/reports", h.HeroReports)
		api.GET("/beasts", h.ListBeasts)
		api.GET("/skills", h.ListSkills)
		api.GET("/sessions/:id", h.GetSession)

		protected := api.Group("")
		protected.Use(h.AuthRequired())
		protected.POST("/encounters", h.StartEncounter)
		protected.POST("/duels", h.StartDuel)
		protected.POST("/sessions/:id/decision", h.SubmitDecision)
	}

	return router
}

// requestLog records every request through the application logger.
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// statusFor maps a domain error onto the HTTP status it surfaces as.
// Anything unmapped is an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrHeroNotFound),
		errors.Is(err, encounter.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrHeroExists),
		errors.Is(err, encounter.ErrHeroInCombat),
		errors.Is(err, encounter.ErrHeroNeedsRecovery),
		errors.Is(err, encounter.ErrNoPendingPrompt):
		return http.StatusConflict
	case errors.Is(err, encounter.ErrUnknownBeast),
		errors.Is(err, encounter.ErrSelfDuel):
		return http.StatusBadRequest
	case errors.Is(err, encounter.ErrPromptOwnership):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the JSON error response for a domain error. Internal
// failures are logged and masked; everything else carries its message.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
