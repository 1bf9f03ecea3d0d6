package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/voting"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// respondVotingError maps voting sentinels onto HTTP statuses. Anything it
// does not recognise is logged and reported as a 500.
func respondVotingError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, voting.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", errors.New("Votable not found"))
	case errors.Is(err, voting.ErrInvalidOrder):
		RespondError(c, http.StatusBadRequest, "invalid_order", errors.New("Invalid order_by parameter"))
	case errors.Is(err, voting.ErrInvalidVoteValue),
		errors.Is(err, voting.ErrInvalidVotableType),
		errors.Is(err, voting.ErrEmptyField):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	default:
		log.Error("Request failed", "path", c.FullPath(), "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}
}
