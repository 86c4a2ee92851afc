package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/qiankun/internal/game/combat"
)

type EncounterRequest struct {
	Beasts []string `json:"beasts"`
	Party  []string `json:"party"`
}

// StartEncounter opens a hunt against the named beasts. The caller leads;
// optional party members join under the caller's banner. Repeated names
// are folded away before the session is built.
func (h *Handler) StartEncounter(c *gin.Context) {
	hero := heroFrom(c)

	var req EncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Beasts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one beast is required"})
		return
	}

	names := []string{hero.Name}
	for _, name := range req.Party {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	id, err := h.sessions.StartHunt(c.Request.Context(), names, req.Beasts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

type DuelRequest struct {
	Opponent string `json:"opponent"`
}

// StartDuel opens a duel between the caller and the named opponent.
func (h *Handler) StartDuel(c *gin.Context) {
	hero := heroFrom(c)

	var req DuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Opponent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an opponent is required"})
		return
	}

	id, err := h.sessions.StartDuel(c.Request.Context(), hero.Name, req.Opponent)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// GetSession returns the live snapshot of a session: round, event log,
// a pending prompt if one is waiting, and the report once finished.
func (h *Handler) GetSession(c *gin.Context) {
	state, err := h.sessions.SessionState(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

// SubmitDecision answers the caller's pending prompt in a session.
func (h *Handler) SubmitDecision(c *gin.Context) {
	hero := heroFrom(c)

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	decision, ok := combat.ParseDecision(req.Decision)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be keep_fighting, surrender or escape"})
		return
	}

	if err := h.sessions.SubmitDecision(c.Param("id"), hero.Name, decision); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
