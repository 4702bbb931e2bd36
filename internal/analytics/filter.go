package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

// ErrInvalidFilterSpec is wrapped by every FilterSpec validation failure.
var ErrInvalidFilterSpec = errors.New("invalid filter spec")

// RotationSafeThreshold is the rotation risk below which a player counts as
// nailed for the rotationRisk flag.
const RotationSafeThreshold = 20

// Range is an inclusive [Min, Max] bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unbounded admits every finite value.
func Unbounded() Range {
	return Range{Min: -math.MaxFloat64, Max: math.MaxFloat64}
}

// Contains reports whether v lies within the range, inclusive on both ends.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%w: %s range has a NaN bound", ErrInvalidFilterSpec, name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: %s range min %g exceeds max %g", ErrInvalidFilterSpec, name, r.Min, r.Max)
	}
	return nil
}

// FilterSpec describes the admitted region of player space. Empty position
// and team sets mean no restriction. InjuryDoubts and RotationRisk widen the
// admitted set when true.
type FilterSpec struct {
	Positions    []models.Position `json:"positions"`
	Teams        []string          `json:"teams"`
	Price        Range             `json:"priceRange"`
	Ownership    Range             `json:"ownershipRange"`
	Minutes      Range             `json:"minutesRange"`
	Form         Range             `json:"formRange"`
	PredGW       Range             `json:"predPtsGwRange"`
	Pred3GW      Range             `json:"predPts3gwRange"`
	Pred6GW      Range             `json:"predPts6gwRange"`
	FDR          Range             `json:"fdrRange"`
	InjuryDoubts bool              `json:"injuryDoubts"`
	RotationRisk bool              `json:"rotationRisk"`
}

// DefaultFilterSpec admits every derived record.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Positions:    []models.Position{},
		Teams:        []string{},
		Price:        Unbounded(),
		Ownership:    Unbounded(),
		Minutes:      Unbounded(),
		Form:         Unbounded(),
		PredGW:       Unbounded(),
		Pred3GW:      Unbounded(),
		Pred6GW:      Unbounded(),
		FDR:          Range{Min: 1, Max: 5},
		InjuryDoubts: true,
		RotationRisk: true,
	}
}

// Validate checks every range and position. It never adjusts the spec.
func (s FilterSpec) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"price", s.Price},
		{"ownership", s.Ownership},
		{"minutes", s.Minutes},
		{"form", s.Form},
		{"predPts_gw", s.PredGW},
		{"predPts_3gw", s.Pred3GW},
		{"predPts_6gw", s.Pred6GW},
		{"fdr", s.FDR},
	}
	for _, nr := range ranges {
		if err := nr.r.validate(nr.name); err != nil {
			return err
		}
	}
	if s.FDR.Min < 1 || s.FDR.Max > 5 {
		return fmt.Errorf("%w: fdr range [%g, %g] must lie within [1, 5]", ErrInvalidFilterSpec, s.FDR.Min, s.FDR.Max)
	}
	for _, p := range s.Positions {
		if !p.Valid() {
			return fmt.Errorf("%w: unknown position %q", ErrInvalidFilterSpec, p)
		}
	}
	return nil
}

// NewFilterSpec returns spec if it is valid.
func NewFilterSpec(spec FilterSpec) (FilterSpec, error) {
	if err := spec.Validate(); err != nil {
		return FilterSpec{}, err
	}
	return spec, nil
}

// Evaluate returns the players admitted by spec and query, in input order.
// Inputs are not modified.
func Evaluate(players []models.PlayerRecord, spec FilterSpec, query string) []models.PlayerRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	positions := positionSet(spec.Positions)
	teams := teamSet(spec.Teams)

	out := make([]models.PlayerRecord, 0, len(players))
	for _, p := range players {
		if admits(p, spec, q, positions, teams) {
			out = append(out, p)
		}
	}
	return out
}

// Admits reports whether a single player passes spec and query.
func Admits(p models.PlayerRecord, spec FilterSpec, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return admits(p, spec, q, positionSet(spec.Positions), teamSet(spec.Teams))
}

func admits(p models.PlayerRecord, spec FilterSpec, q string, positions map[models.Position]struct{}, teams map[string]struct{}) bool {
	if q != "" &&
		!strings.Contains(strings.ToLower(p.Name), q) &&
		!strings.Contains(strings.ToLower(p.Team), q) {
		return false
	}
	if len(positions) > 0 {
		if _, ok := positions[p.Position]; !ok {
			return false
		}
	}
	if len(teams) > 0 {
		if _, ok := teams[strings.ToUpper(p.Team)]; !ok {
			return false
		}
	}

	if !spec.Price.Contains(p.Price) ||
		!spec.Ownership.Contains(p.Ownership) ||
		!spec.Minutes.Contains(p.MinutesL5) ||
		!spec.Form.Contains(p.FormL5) ||
		!spec.PredGW.Contains(p.PredPtsGW) ||
		!spec.Pred3GW.Contains(p.PredPts3GW) ||
		!spec.Pred6GW.Contains(p.PredPts6GW) ||
		!spec.FDR.Contains(float64(p.NextOpponentFDR)) {
		return false
	}

	if !spec.InjuryDoubts && p.InjuryStatus != models.StatusFit {
		return false
	}
	if !spec.RotationRisk && p.RotationRiskPct < RotationSafeThreshold {
		return false
	}
	return true
}

func positionSet(ps []models.Position) map[models.Position]struct{} {
	set := make(map[models.Position]struct{}, len(ps))
	for _, p := range ps {
		set[p] = struct{}{}
	}
	return set
}

func teamSet(ts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
