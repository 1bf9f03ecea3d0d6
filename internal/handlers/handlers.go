package handlers

import (
	"github.com/emilythestrangee/votables/backend/internal/auth"
	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/users"
	"github.com/emilythestrangee/votables/backend/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Votable *VotableHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(userStore *users.Store, issuer *auth.Issuer, svc *voting.Service, stats StatsReader, log *logger.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(userStore, issuer, log),
		Votable: NewVotableHandler(svc, stats, log),
	}
}
