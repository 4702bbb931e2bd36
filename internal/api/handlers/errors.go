package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/providers"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/internal/session"
	"github.com/stitts-dev/fpl-scout/internal/squad"
	"github.com/stitts-dev/fpl-scout/pkg/utils"
)

var domainErrors = utils.Classifier{
	{Targets: []error{session.ErrSessionNotFound}, Code: utils.ErrCodeNotFound, Message: "Session not found", Quiet: true},
	{Targets: []error{services.ErrPlayerNotFound}, Code: utils.ErrCodeNotFound, Message: "Player not found", Quiet: true},
	{Targets: []error{squad.ErrPlayerNotInSquad}, Code: utils.ErrCodeNotFound, Message: "Player not in squad", Quiet: true},

	{Targets: []error{analytics.ErrInvalidFilterSpec}, Code: utils.ErrCodeInvalidFilterSpec, Message: "Invalid filter spec"},
	{
		Targets: []error{analytics.ErrUnknownSortKey, session.ErrInvalidPage, squad.ErrInvalidFormation},
		Code:    utils.ErrCodeValidation,
		Message: "Invalid request",
	},

	{Targets: []error{squad.ErrInsufficientBudget}, Code: utils.ErrCodeBudgetExceeded, Message: "Insufficient budget"},
	{
		Targets: []error{
			squad.ErrSquadFull, squad.ErrDuplicatePlayer, squad.ErrPositionLimit,
			session.ErrCompareFull, session.ErrAlreadyCompared,
		},
		Code:    utils.ErrCodeInvalidSelection,
		Message: "Selection rejected",
	},

	{Targets: []error{providers.ErrUnavailable}, Code: utils.ErrCodeUnavailable, Message: "Player feed unavailable", Quiet: true},
}

// respondError maps domain errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	utils.SendAppError(c, domainErrors.Classify(err))
}
