package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/internal/squad"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 200
	MaxCompare     = 3
)

var (
	ErrCompareFull     = errors.New("compare list is full")
	ErrAlreadyCompared = errors.New("player already in compare list")
	ErrInvalidPage     = errors.New("invalid page")
)

// State is one client's browsing state over the shared player snapshot:
// search, filters, sort, pagination, selected player, compare list and
// team under construction. It is not safe for concurrent use; the Store
// serializes access.
type State struct {
	ID string

	players  []models.PlayerRecord
	version  time.Time
	filtered []models.PlayerRecord

	query   string
	filters analytics.FilterSpec
	sortKey string
	sortDir analytics.SortDirection

	page    int
	perPage int

	selected *models.PlayerRecord
	compare  []models.PlayerRecord
	team     *squad.Selection

	createdAt time.Time
	touchedAt time.Time
}

func newState(id string, budget float64, now time.Time) *State {
	return &State{
		ID:        id,
		filtered:  []models.PlayerRecord{},
		filters:   analytics.DefaultFilterSpec(),
		sortDir:   analytics.SortDesc,
		page:      1,
		perPage:   DefaultPerPage,
		compare:   []models.PlayerRecord{},
		team:      squad.NewSelection(budget),
		createdAt: now,
		touchedAt: now,
	}
}

// Sync installs a new player snapshot. A snapshot with the version already
// held is ignored; a new one re-applies the current query, filters and sort
// and returns to page 1.
func (s *State) Sync(players []models.PlayerRecord, version time.Time) {
	if !s.version.IsZero() && s.version.Equal(version) {
		return
	}
	s.players = players
	s.version = version
	s.recompute()
}

// Version is the snapshot time of the players last synced.
func (s *State) Version() time.Time { return s.version }

func (s *State) SetQuery(q string) {
	s.query = q
	s.recompute()
}

// SetFilters replaces the filter spec. An invalid spec leaves the state
// unchanged.
func (s *State) SetFilters(spec analytics.FilterSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	s.filters = spec
	s.recompute()
	return nil
}

func (s *State) ClearFilters() {
	s.filters = analytics.DefaultFilterSpec()
	s.recompute()
}

// SetSort orders the filtered list by key. An empty key restores feed order.
func (s *State) SetSort(key string, dir analytics.SortDirection) error {
	if key != "" {
		if _, err := analytics.SortPlayers(nil, key, dir); err != nil {
			return err
		}
	}
	s.sortKey, s.sortDir = key, dir
	s.recompute()
	return nil
}

func (s *State) recompute() {
	filtered := analytics.Evaluate(s.players, s.filters, s.query)
	if s.sortKey != "" {
		if sorted, err := analytics.SortPlayers(filtered, s.sortKey, s.sortDir); err == nil {
			filtered = sorted
		}
	}
	s.filtered = filtered
	s.page = 1
}

// TotalPages is zero when nothing matches.
func (s *State) TotalPages() int {
	return (len(s.filtered) + s.perPage - 1) / s.perPage
}

// SetPage moves to page n, which must lie within 1..TotalPages (page 1 is
// always allowed).
func (s *State) SetPage(n int) error {
	if n < 1 || (n > 1 && n > s.TotalPages()) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPage, n, s.TotalPages())
	}
	s.page = n
	return nil
}

// SetPerPage changes the page size and keeps the current page within range.
func (s *State) SetPerPage(n int) error {
	if n < 1 || n > MaxPerPage {
		return fmt.Errorf("%w: page size %d", ErrInvalidPage, n)
	}
	s.perPage = n
	if total := s.TotalPages(); s.page > total {
		s.page = max(total, 1)
	}
	return nil
}

// PageItems returns the players on the current page.
func (s *State) PageItems() []models.PlayerRecord {
	start := (s.page - 1) * s.perPage
	if start >= len(s.filtered) {
		return []models.PlayerRecord{}
	}
	end := min(start+s.perPage, len(s.filtered))
	out := make([]models.PlayerRecord, end-start)
	copy(out, s.filtered[start:end])
	return out
}

func (s *State) Select(p models.PlayerRecord) { s.selected = &p }

func (s *State) ClearSelection() { s.selected = nil }

// AddToCompare appends p unless the list is full or already holds p.
func (s *State) AddToCompare(p models.PlayerRecord) error {
	for _, c := range s.compare {
		if c.ID == p.ID {
			return fmt.Errorf("%w: %s", ErrAlreadyCompared, p.Name)
		}
	}
	if len(s.compare) >= MaxCompare {
		return ErrCompareFull
	}
	s.compare = append(s.compare, p)
	return nil
}

// RemoveFromCompare drops id if present.
func (s *State) RemoveFromCompare(id string) {
	kept := s.compare[:0]
	for _, c := range s.compare {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.compare = kept
}

func (s *State) ClearCompare() { s.compare = []models.PlayerRecord{} }

func (s *State) Team() *squad.Selection { return s.team }

// Sort describes the active ordering of a session's list.
type Sort struct {
	Key       string                  `json:"key,omitempty"`
	Direction analytics.SortDirection `json:"direction"`
}

// View is the serializable snapshot of a State.
type View struct {
	ID           string                `json:"id"`
	Query        string                `json:"query"`
	Filters      analytics.FilterSpec  `json:"filters"`
	Sort         Sort                  `json:"sort"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
	TotalPages   int                   `json:"totalPages"`
	TotalPlayers int                   `json:"totalPlayers"`
	Selected     *models.PlayerRecord  `json:"selected,omitempty"`
	Compare      []models.PlayerRecord `json:"compare"`
	Team         squad.Summary         `json:"team"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func (s *State) View() View {
	compare := make([]models.PlayerRecord, len(s.compare))
	copy(compare, s.compare)
	var selected *models.PlayerRecord
	if s.selected != nil {
		p := *s.selected
		selected = &p
	}
	return View{
		ID:           s.ID,
		Query:        s.query,
		Filters:      s.filters,
		Sort:         Sort{Key: s.sortKey, Direction: s.sortDir},
		Page:         s.page,
		PerPage:      s.perPage,
		TotalPages:   s.TotalPages(),
		TotalPlayers: len(s.filtered),
		Selected:     selected,
		Compare:      compare,
		Team:         s.team.Summary(),
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.touchedAt,
	}
}
