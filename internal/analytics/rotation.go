package analytics

import "github.com/stitts-dev/fpl-scout/internal/models"

// RotationInputs are the observable fields the rotation heuristic reads.
type RotationInputs struct {
	Position     models.Position
	Minutes      float64
	GamesElapsed int
	TotalPoints  float64
	Ownership    float64
	Price        float64
	Status       models.InjuryStatus
}

// RotationRisk estimates how likely a player is to miss the next start, on a
// 0-100 scale. The base comes from share of available minutes, with keepers
// treated as starter-or-backup. Total points, ownership and price each shift
// it by a bounded amount, and unavailability adds a penalty. Every adjustment
// is non-increasing in points and ownership, and the status penalty is never
// negative.
func RotationRisk(in RotationInputs) float64 {
	risk := minutesBase(in)
	risk += pointsAdjustment(in.TotalPoints)
	risk += ownershipAdjustment(in.Ownership)
	risk += priceAdjustment(in.Price)
	risk += statusPenalty(in.Status)
	return clamp(risk, 0, 100)
}

func minutesBase(in RotationInputs) float64 {
	if in.Position == models.PositionGK {
		switch {
		case in.Minutes > 800:
			return 5
		case in.Minutes > 200:
			return 25
		default:
			return 95
		}
	}

	games := in.GamesElapsed
	if games < 1 {
		games = 1
	}
	share := in.Minutes / float64(90*games) * 100
	switch {
	case share >= 80:
		return 5
	case share >= 60:
		return 15
	case share >= 40:
		return 35
	case share >= 20:
		return 65
	default:
		return 90
	}
}

func pointsAdjustment(points float64) float64 {
	switch {
	case points >= 80:
		return -10
	case points >= 40:
		return -5
	case points >= 15:
		return 0
	default:
		return 10
	}
}

func ownershipAdjustment(ownership float64) float64 {
	switch {
	case ownership > 20:
		return -10
	case ownership >= 5:
		return -5
	case ownership >= 2:
		return 0
	default:
		return 20
	}
}

func priceAdjustment(price float64) float64 {
	switch {
	case price >= 9.0:
		return -5
	case price > 0 && price <= 4.5:
		return 5
	default:
		return 0
	}
}

func statusPenalty(status models.InjuryStatus) float64 {
	switch status {
	case models.StatusInjured, models.StatusSuspended:
		return 30
	case models.StatusDoubt:
		return 10
	default:
		return 0
	}
}
