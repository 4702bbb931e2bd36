package squad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

const (
	MaxPlayers       = 15
	DefaultBudget    = 100.0
	DefaultFormation = "3-5-2"

	startingOutfield = 10
)

var (
	ErrSquadFull          = errors.New("squad is full")
	ErrDuplicatePlayer    = errors.New("player already in squad")
	ErrPositionLimit      = errors.New("position limit reached")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrPlayerNotInSquad   = errors.New("player not in squad")
	ErrInvalidFormation   = errors.New("invalid formation")
)

// PositionLimits caps how many squad members each position may have.
var PositionLimits = map[models.Position]int{
	models.PositionGK:  2,
	models.PositionDEF: 5,
	models.PositionMID: 5,
	models.PositionFWD: 3,
}

// Pick is one selected player with its armband flags.
type Pick struct {
	models.PlayerRecord
	IsCaptain     bool `json:"isCaptain"`
	IsViceCaptain bool `json:"isViceCaptain"`
}

// Selection is a mutable squad under construction. Prices are held to
// tenths so the remaining budget never drifts. A Selection is not safe for
// concurrent use; callers serialize access.
type Selection struct {
	picks     []Pick
	cap       decimal.Decimal
	spent     decimal.Decimal
	predicted decimal.Decimal
	formation Formation
}

func NewSelection(budget float64) *Selection {
	if budget <= 0 {
		budget = DefaultBudget
	}
	f, _ := ParseFormation(DefaultFormation)
	return &Selection{
		cap:       tenths(budget),
		spent:     decimal.Zero,
		predicted: decimal.Zero,
		formation: f,
	}
}

func tenths(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(1)
}

// Add appends p. It fails without changing the selection when the squad
// is full, p is already selected, p's position is at its limit or p costs
// more than the remaining budget.
func (s *Selection) Add(p models.PlayerRecord) error {
	if len(s.picks) >= MaxPlayers {
		return ErrSquadFull
	}
	if s.index(p.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.Name)
	}
	if limit, ok := PositionLimits[p.Position]; ok && s.count(p.Position) >= limit {
		return fmt.Errorf("%w: %d %s", ErrPositionLimit, limit, p.Position)
	}
	price := tenths(p.Price)
	if price.GreaterThan(s.Remaining()) {
		return fmt.Errorf("%w: %s costs £%sm, £%sm left", ErrInsufficientBudget, p.Name, price.StringFixed(1), s.Remaining().StringFixed(1))
	}

	s.picks = append(s.picks, Pick{PlayerRecord: p})
	s.spent = s.spent.Add(price)
	s.predicted = s.predicted.Add(decimal.NewFromFloat(p.PredPtsGW))
	return nil
}

// Remove drops the player with id and refunds their price.
func (s *Selection) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotInSquad, id)
	}
	p := s.picks[i]
	s.picks = append(s.picks[:i], s.picks[i+1:]...)
	s.spent = s.spent.Sub(tenths(p.Price))
	s.predicted = s.predicted.Sub(decimal.NewFromFloat(p.PredPtsGW))
	return nil
}

// SetCaptain gives id the armband. If id was vice-captain it loses that flag.
func (s *Selection) SetCaptain(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotInSquad, id)
	}
	for i := range s.picks {
		mine := s.picks[i].ID == id
		s.picks[i].IsCaptain = mine
		if mine {
			s.picks[i].IsViceCaptain = false
		}
	}
	return nil
}

// SetViceCaptain is the mirror of SetCaptain.
func (s *Selection) SetViceCaptain(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotInSquad, id)
	}
	for i := range s.picks {
		mine := s.picks[i].ID == id
		s.picks[i].IsViceCaptain = mine
		if mine {
			s.picks[i].IsCaptain = false
		}
	}
	return nil
}

// Clear empties the squad and restores the full budget and default formation.
func (s *Selection) Clear() {
	s.picks = nil
	s.spent = decimal.Zero
	s.predicted = decimal.Zero
	s.formation, _ = ParseFormation(DefaultFormation)
}

func (s *Selection) SetFormation(label string) error {
	f, err := ParseFormation(label)
	if err != nil {
		return err
	}
	s.formation = f
	return nil
}

func (s *Selection) Formation() Formation { return s.formation }

// Picks returns a copy of the selection in insertion order.
func (s *Selection) Picks() []Pick {
	out := make([]Pick, len(s.picks))
	copy(out, s.picks)
	return out
}

func (s *Selection) Len() int { return len(s.picks) }

func (s *Selection) Budget() decimal.Decimal { return s.cap }

// Remaining is the budget left after every selected price.
func (s *Selection) Remaining() decimal.Decimal { return s.cap.Sub(s.spent) }

// TotalPredicted is the sum of next-gameweek predicted points, to two places.
func (s *Selection) TotalPredicted() float64 {
	return s.predicted.Round(2).InexactFloat64()
}

func (s *Selection) Captain() (Pick, bool) {
	for _, p := range s.picks {
		if p.IsCaptain {
			return p, true
		}
	}
	return Pick{}, false
}

func (s *Selection) ViceCaptain() (Pick, bool) {
	for _, p := range s.picks {
		if p.IsViceCaptain {
			return p, true
		}
	}
	return Pick{}, false
}

// Counts returns the number of selected players per position.
func (s *Selection) Counts() map[models.Position]int {
	counts := make(map[models.Position]int, len(models.Positions))
	for _, p := range s.picks {
		counts[p.Position]++
	}
	return counts
}

// CanField reports whether the squad holds enough players at every
// position to start the current formation.
func (s *Selection) CanField() bool {
	counts := s.Counts()
	return counts[models.PositionGK] >= 1 &&
		counts[models.PositionDEF] >= s.formation.DEF &&
		counts[models.PositionMID] >= s.formation.MID &&
		counts[models.PositionFWD] >= s.formation.FWD
}

func (s *Selection) index(id string) int {
	for i, p := range s.picks {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Selection) count(pos models.Position) int {
	n := 0
	for _, p := range s.picks {
		if p.Position == pos {
			n++
		}
	}
	return n
}

// Formation is the outfield shape of a starting XI. The goalkeeper is implied.
type Formation struct {
	DEF int `json:"def"`
	MID int `json:"mid"`
	FWD int `json:"fwd"`
}

// ParseFormation reads labels like "3-5-2" and rejects shapes that cannot
// start a match.
func ParseFormation(label string) (Formation, error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 3 {
		return Formation{}, fmt.Errorf("%w: %q", ErrInvalidFormation, label)
	}
	n := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return Formation{}, fmt.Errorf("%w: %q", ErrInvalidFormation, label)
		}
		n[i] = v
	}
	f := Formation{DEF: n[0], MID: n[1], FWD: n[2]}
	if !f.Valid() {
		return Formation{}, fmt.Errorf("%w: %q", ErrInvalidFormation, label)
	}
	return f, nil
}

func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.DEF, f.MID, f.FWD)
}

func (f Formation) Valid() bool {
	return FormationValid(map[models.Position]int{
		models.PositionGK:  1,
		models.PositionDEF: f.DEF,
		models.PositionMID: f.MID,
		models.PositionFWD: f.FWD,
	})
}

// FormationValid checks a starting XI: one goalkeeper, 3-5 defenders,
// 3-5 midfielders, 1-3 forwards and ten outfield players.
func FormationValid(counts map[models.Position]int) bool {
	def, mid, fwd := counts[models.PositionDEF], counts[models.PositionMID], counts[models.PositionFWD]
	return counts[models.PositionGK] == 1 &&
		def >= 3 && def <= 5 &&
		mid >= 3 && mid <= 5 &&
		fwd >= 1 && fwd <= 3 &&
		def+mid+fwd == startingOutfield
}

// Summary is the serializable view of a Selection.
type Summary struct {
	Players      []Pick                  `json:"players"`
	Budget       float64                 `json:"budget"`
	Remaining    float64                 `json:"remaining"`
	TotalPredPts float64                 `json:"totalPredPts"`
	Formation    string                  `json:"formation"`
	Counts       map[models.Position]int `json:"counts"`
	CanField     bool                    `json:"canField"`
}

func (s *Selection) Summary() Summary {
	return Summary{
		Players:      s.Picks(),
		Budget:       s.cap.InexactFloat64(),
		Remaining:    s.Remaining().InexactFloat64(),
		TotalPredPts: s.TotalPredicted(),
		Formation:    s.formation.String(),
		Counts:       s.Counts(),
		CanField:     s.CanField(),
	}
}
