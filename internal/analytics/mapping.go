package analytics

import "github.com/stitts-dev/fpl-scout/internal/models"

var positionByElementType = map[int]models.Position{
	1: models.PositionGK,
	2: models.PositionDEF,
	3: models.PositionMID,
	4: models.PositionFWD,
}

var statusByCode = map[string]models.InjuryStatus{
	"a": models.StatusFit,
	"d": models.StatusDoubt,
	"i": models.StatusInjured,
	"s": models.StatusSuspended,
	"u": models.StatusFit,
}

// MapPosition converts a provider element_type. Unknown codes map to MID.
func MapPosition(elementType int) models.Position {
	if p, ok := positionByElementType[elementType]; ok {
		return p
	}
	return models.PositionMID
}

// MapStatus converts a provider status code. Unknown codes map to Fit.
func MapStatus(code string) models.InjuryStatus {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return models.StatusFit
}
