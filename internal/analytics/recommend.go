package analytics

import (
	"sort"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

// RecommendationLimit caps every category's list.
const RecommendationLimit = 3

// Category is one fixed recommendation rule. Confidence is a static
// configured value, not a calibrated statistic.
type Category struct {
	Key         string
	Title       string
	Description string
	Confidence  int
	Eligible    func(p models.PlayerRecord) bool
	Less        func(a, b models.PlayerRecord) bool
}

// Recommendation is the ranked output of one category.
type Recommendation struct {
	Category    string                `json:"category"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Confidence  int                   `json:"confidence"`
	Players     []models.PlayerRecord `json:"players"`
}

const (
	CategoryBestValue     = "best_value"
	CategoryDifferentials = "differentials"
	CategoryBudget        = "budget_enablers"
	CategoryPremium       = "captain_contenders"
)

// Category thresholds.
const (
	bestValueMaxRotation  = 25
	bestValueMinMinutes   = 180
	bestValueMinOwnership = 1.0

	differentialMinOwnership = 0.5
	differentialMaxOwnership = 10
	differentialMaxRotation  = 35

	budgetMaxPrice   = 5.0
	budgetMinMinutes = 270

	premiumMinPrice    = 9.0
	premiumMaxRotation = 15
	premiumMinPredPts  = 6.0
)

// DefaultCategories returns the four standard categories with the given
// confidences keyed by category key. Missing keys use built-in values.
func DefaultCategories(confidence map[string]int) []Category {
	conf := func(key string, def int) int {
		if v, ok := confidence[key]; ok {
			return v
		}
		return def
	}

	return []Category{
		{
			Key:         CategoryBestValue,
			Title:       "Best Value This Gameweek",
			Description: "High predicted points relative to price from players who start.",
			Confidence:  conf(CategoryBestValue, 92),
			Eligible: func(p models.PlayerRecord) bool {
				return p.InjuryStatus == models.StatusFit &&
					p.RotationRiskPct <= bestValueMaxRotation &&
					p.MinutesL5 >= bestValueMinMinutes &&
					p.Ownership >= bestValueMinOwnership &&
					p.Price > 0
			},
			Less: func(a, b models.PlayerRecord) bool {
				va, vb := a.PredPtsGW/a.Price, b.PredPtsGW/b.Price
				if va != vb {
					return va > vb
				}
				return a.PredPtsGW > b.PredPtsGW
			},
		},
		{
			Key:         CategoryDifferentials,
			Title:       "Low Ownership Gems",
			Description: "Under 10% owned players with a realistic route to big returns.",
			Confidence:  conf(CategoryDifferentials, 78),
			Eligible: func(p models.PlayerRecord) bool {
				return p.InjuryStatus == models.StatusFit &&
					p.Ownership >= differentialMinOwnership &&
					p.Ownership < differentialMaxOwnership &&
					p.RotationRiskPct <= differentialMaxRotation
			},
			Less: func(a, b models.PlayerRecord) bool {
				if a.PredPtsGW != b.PredPtsGW {
					return a.PredPtsGW > b.PredPtsGW
				}
				return a.Ownership < b.Ownership
			},
		},
		{
			Key:         CategoryBudget,
			Title:       "Cheap Starting Players",
			Description: "Affordable players who regularly start, safest first.",
			Confidence:  conf(CategoryBudget, 85),
			Eligible: func(p models.PlayerRecord) bool {
				return p.InjuryStatus == models.StatusFit &&
					p.Price > 0 && p.Price <= budgetMaxPrice &&
					p.MinutesL5 >= budgetMinMinutes
			},
			Less: func(a, b models.PlayerRecord) bool {
				if a.RotationRiskPct != b.RotationRiskPct {
					return a.RotationRiskPct < b.RotationRiskPct
				}
				return a.PredPtsGW > b.PredPtsGW
			},
		},
		{
			Key:         CategoryPremium,
			Title:       "Captain Contenders",
			Description: "Premium nailed starters with the highest ceiling this gameweek.",
			Confidence:  conf(CategoryPremium, 71),
			Eligible: func(p models.PlayerRecord) bool {
				return p.InjuryStatus == models.StatusFit &&
					p.Price >= premiumMinPrice &&
					p.RotationRiskPct <= premiumMaxRotation &&
					p.PredPtsGW >= premiumMinPredPts
			},
			Less: func(a, b models.PlayerRecord) bool {
				return a.PredPtsGW > b.PredPtsGW
			},
		},
	}
}

// Recommend applies the default categories.
func Recommend(players []models.PlayerRecord) []Recommendation {
	return RecommendWith(players, DefaultCategories(nil))
}

// RecommendWith returns one result per category, in category order. Each
// list holds at most RecommendationLimit eligible players and is never padded.
func RecommendWith(players []models.PlayerRecord, categories []Category) []Recommendation {
	out := make([]Recommendation, 0, len(categories))
	for _, c := range categories {
		eligible := make([]models.PlayerRecord, 0)
		for _, p := range players {
			if c.Eligible(p) {
				eligible = append(eligible, p)
			}
		}
		sort.SliceStable(eligible, func(i, j int) bool {
			return c.Less(eligible[i], eligible[j])
		})
		if len(eligible) > RecommendationLimit {
			eligible = eligible[:RecommendationLimit]
		}
		out = append(out, Recommendation{
			Category:    c.Key,
			Title:       c.Title,
			Description: c.Description,
			Confidence:  c.Confidence,
			Players:     eligible,
		})
	}
	return out
}
