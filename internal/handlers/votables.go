package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/middleware"
	"github.com/emilythestrangee/votables/backend/internal/models"
	"github.com/emilythestrangee/votables/backend/internal/voting"
)

// StatsReader serves statistics snapshots written after each recompute.
type StatsReader interface {
	Snapshot(ctx context.Context, votableID int) (models.Statistics, bool, error)
}

type VotableHandler struct {
	svc   *voting.Service
	stats StatsReader
	log   *logger.Logger
}

func NewVotableHandler(svc *voting.Service, stats StatsReader, log *logger.Logger) *VotableHandler {
	return &VotableHandler{svc: svc, stats: stats, log: log}
}

type StatsResponse struct {
	VotableID  int               `json:"votable_id"`
	Statistics models.Statistics `json:"statistics"`
	Agreement  int               `json:"agreement"`
	Source     string            `json:"source"`
}

// CreateVotable creates a new votable (PROTECTED - requires authentication)
func (h *VotableHandler) CreateVotable(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("User not authenticated"))
		return
	}

	var input models.CreateVotableRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	votable, err := h.svc.CreateVotable(c.Request.Context(), userID, input.Title, input.Text, input.VotableType)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewVotableResponse(votable, models.LabelNoVote))
}

// GetVotables lists every votable in the requested order with the caller's vote.
func (h *VotableHandler) GetVotables(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	order, err := voting.ParseOrder(c.Query("order_by"))
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}

	votables, err := h.svc.Rank(c.Request.Context(), order)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}
	labels, err := h.svc.UserVoteLabels(c.Request.Context(), votables, userID)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}

	// If no votables, return empty array not null
	responses := make([]models.VotableResponse, 0, len(votables))
	for _, v := range votables {
		responses = append(responses, models.NewVotableResponse(v, labels[v.ID]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetVotable returns a single votable by ID
func (h *VotableHandler) GetVotable(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := votableID(c)
	if !ok {
		return
	}

	votable, err := h.svc.GetVotable(c.Request.Context(), id)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}
	label, err := h.svc.UserVoteLabel(c.Request.Context(), votable, userID)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.NewVotableResponse(votable, label))
}

// Vote records the caller's vote and returns the refreshed votable.
func (h *VotableHandler) Vote(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("User not authenticated"))
		return
	}
	id, ok := votableID(c)
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	value := models.VoteType(*input.Vote)

	votable, err := h.svc.CastVote(c.Request.Context(), userID, id, value)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vote recorded",
		"votable": models.NewVotableResponse(votable, models.LabelFor(value)),
	})
}

// GetStats serves the cached statistics snapshot, falling back to the
// persisted votable on a miss or cache failure.
func (h *VotableHandler) GetStats(c *gin.Context) {
	id, ok := votableID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.stats != nil {
		snap, hit, err := h.stats.Snapshot(ctx, id)
		if err != nil {
			h.log.Warn("Stats cache read failed", "votable_id", id, "error", err)
		}
		if hit && err == nil {
			c.JSON(http.StatusOK, StatsResponse{VotableID: id, Statistics: snap, Agreement: snap.Agreement(), Source: "cache"})
			return
		}
	}

	votable, err := h.svc.GetVotable(ctx, id)
	if err != nil {
		respondVotingError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		VotableID:  id,
		Statistics: votable.Statistics,
		Agreement:  votable.Statistics.Agreement(),
		Source:     "store",
	})
}

func votableID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("Votable not found"))
		return 0, false
	}
	return id, true
}
