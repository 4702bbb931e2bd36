package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc" or "desc" in any case; empty means desc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

var numericSortKeys = map[string]func(p models.PlayerRecord) float64{
	"price":           func(p models.PlayerRecord) float64 { return p.Price },
	"ownership":       func(p models.PlayerRecord) float64 { return p.Ownership },
	"minutesL5":       func(p models.PlayerRecord) float64 { return p.MinutesL5 },
	"formL5":          func(p models.PlayerRecord) float64 { return p.FormL5 },
	"xG_L5":           func(p models.PlayerRecord) float64 { return p.XGL5 },
	"xA_L5":           func(p models.PlayerRecord) float64 { return p.XAL5 },
	"xGI_L5":          func(p models.PlayerRecord) float64 { return p.XGIL5 },
	"xG_season":       func(p models.PlayerRecord) float64 { return p.XGSeason },
	"xA_season":       func(p models.PlayerRecord) float64 { return p.XASeason },
	"xGI_season":      func(p models.PlayerRecord) float64 { return p.XGISeason },
	"predPts_gw":      func(p models.PlayerRecord) float64 { return p.PredPtsGW },
	"predPts_3gw":     func(p models.PlayerRecord) float64 { return p.PredPts3GW },
	"predPts_6gw":     func(p models.PlayerRecord) float64 { return p.PredPts6GW },
	"nextOpponentFDR": func(p models.PlayerRecord) float64 { return float64(p.NextOpponentFDR) },
	"rotationRiskPct": func(p models.PlayerRecord) float64 { return p.RotationRiskPct },
	"totalPoints":     func(p models.PlayerRecord) float64 { return float64(p.TotalPoints) },
}

var textSortKeys = map[string]func(p models.PlayerRecord) string{
	"name":         func(p models.PlayerRecord) string { return strings.ToLower(p.Name) },
	"team":         func(p models.PlayerRecord) string { return p.Team },
	"position":     func(p models.PlayerRecord) string { return string(p.Position) },
	"nextOpponent": func(p models.PlayerRecord) string { return p.NextOpponent },
	"injuryStatus": func(p models.PlayerRecord) string { return string(p.InjuryStatus) },
}

// SortPlayers returns a sorted copy of players. The sort is stable, so equal
// keys keep their input order in both directions.
func SortPlayers(players []models.PlayerRecord, key string, dir SortDirection) ([]models.PlayerRecord, error) {
	out := make([]models.PlayerRecord, len(players))
	copy(out, players)

	if num, ok := numericSortKeys[key]; ok {
		sort.SliceStable(out, func(i, j int) bool {
			if dir == SortAsc {
				return num(out[i]) < num(out[j])
			}
			return num(out[i]) > num(out[j])
		})
		return out, nil
	}
	if text, ok := textSortKeys[key]; ok {
		sort.SliceStable(out, func(i, j int) bool {
			if dir == SortAsc {
				return text(out[i]) < text(out[j])
			}
			return text(out[i]) > text(out[j])
		})
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
}
