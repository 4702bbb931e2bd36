package squad

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

func rec(id string, pos models.Position, price, pred float64) models.PlayerRecord {
	return models.PlayerRecord{
		ID:        id,
		Name:      "Player " + id,
		Team:      "ARS",
		Position:  pos,
		Price:     price,
		PredPtsGW: pred,
	}
}

func TestNewSelection(t *testing.T) {
	s := NewSelection(0)
	assert.Equal(t, "100", s.Budget().String())
	assert.Equal(t, "100.0", s.Remaining().StringFixed(1))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, DefaultFormation, s.Formation().String())
	assert.Zero(t, s.TotalPredicted())
}

func TestSelection_AddAndRemoveKeepLedger(t *testing.T) {
	s := NewSelection(100)

	require.NoError(t, s.Add(rec("1", models.PositionMID, 10.1, 7.2)))
	require.NoError(t, s.Add(rec("2", models.PositionDEF, 4.3, 3.1)))
	require.NoError(t, s.Add(rec("3", models.PositionFWD, 7.7, 5.5)))

	assert.Equal(t, "77.9", s.Remaining().StringFixed(1))
	assert.InDelta(t, 15.8, s.TotalPredicted(), 1e-9)

	require.NoError(t, s.Remove("2"))
	assert.Equal(t, "82.2", s.Remaining().StringFixed(1))
	assert.InDelta(t, 12.7, s.TotalPredicted(), 1e-9)

	picks := s.Picks()
	require.Len(t, picks, 2)
	assert.Equal(t, "1", picks[0].ID)
	assert.Equal(t, "3", picks[1].ID)
}

func TestSelection_RepeatedAddRemoveDoesNotDrift(t *testing.T) {
	s := NewSelection(100)
	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Add(rec("x", models.PositionMID, 0.1, 0.1)))
		require.NoError(t, s.Remove("x"))
	}
	assert.True(t, s.Remaining().Equal(s.Budget()))
	assert.Zero(t, s.TotalPredicted())
}

func TestSelection_AddRejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *Selection)
		add     models.PlayerRecord
		wantErr error
	}{
		{
			name:    "duplicate",
			setup:   func(s *Selection) { _ = s.Add(rec("1", models.PositionMID, 5, 1)) },
			add:     rec("1", models.PositionMID, 5, 1),
			wantErr: ErrDuplicatePlayer,
		},
		{
			name: "third goalkeeper",
			setup: func(s *Selection) {
				_ = s.Add(rec("g1", models.PositionGK, 4.5, 1))
				_ = s.Add(rec("g2", models.PositionGK, 4.0, 1))
			},
			add:     rec("g3", models.PositionGK, 4.0, 1),
			wantErr: ErrPositionLimit,
		},
		{
			name: "fourth forward",
			setup: func(s *Selection) {
				for i := 0; i < 3; i++ {
					_ = s.Add(rec(fmt.Sprintf("f%d", i), models.PositionFWD, 6, 1))
				}
			},
			add:     rec("f3", models.PositionFWD, 6, 1),
			wantErr: ErrPositionLimit,
		},
		{
			name:    "over budget",
			setup:   func(s *Selection) { _ = s.Add(rec("1", models.PositionFWD, 95.0, 1)) },
			add:     rec("2", models.PositionMID, 5.1, 1),
			wantErr: ErrInsufficientBudget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection(100)
			tt.setup(s)
			before := s.Summary()

			err := s.Add(tt.add)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, s.Summary())
		})
	}
}

func TestSelection_ExactBudgetIsAllowed(t *testing.T) {
	s := NewSelection(100)
	require.NoError(t, s.Add(rec("1", models.PositionFWD, 95.0, 1)))
	require.NoError(t, s.Add(rec("2", models.PositionMID, 5.0, 1)))
	assert.True(t, s.Remaining().IsZero())
}

func TestSelection_SquadFull(t *testing.T) {
	s := NewSelection(1000)
	plan := map[models.Position]int{
		models.PositionGK:  2,
		models.PositionDEF: 5,
		models.PositionMID: 5,
		models.PositionFWD: 3,
	}
	n := 0
	for _, pos := range models.Positions {
		for i := 0; i < plan[pos]; i++ {
			require.NoError(t, s.Add(rec(fmt.Sprintf("%s%d", pos, i), pos, 5, 1)))
			n++
		}
	}
	require.Equal(t, MaxPlayers, n)

	err := s.Add(rec("extra", models.PositionMID, 4, 1))
	assert.ErrorIs(t, err, ErrSquadFull)
	assert.Equal(t, MaxPlayers, s.Len())
}

func TestSelection_RemoveUnknown(t *testing.T) {
	s := NewSelection(100)
	assert.ErrorIs(t, s.Remove("404"), ErrPlayerNotInSquad)
}

func TestSelection_CaptaincyIsExclusive(t *testing.T) {
	s := NewSelection(100)
	require.NoError(t, s.Add(rec("1", models.PositionMID, 10, 7)))
	require.NoError(t, s.Add(rec("2", models.PositionFWD, 9, 6)))

	require.NoError(t, s.SetCaptain("1"))
	require.NoError(t, s.SetViceCaptain("2"))

	c, ok := s.Captain()
	require.True(t, ok)
	assert.Equal(t, "1", c.ID)
	v, ok := s.ViceCaptain()
	require.True(t, ok)
	assert.Equal(t, "2", v.ID)

	// Promoting the vice-captain clears their vice flag and moves the armband.
	require.NoError(t, s.SetCaptain("2"))
	c, _ = s.Captain()
	assert.Equal(t, "2", c.ID)
	_, ok = s.ViceCaptain()
	assert.False(t, ok)

	require.NoError(t, s.SetViceCaptain("2"))
	_, ok = s.Captain()
	assert.False(t, ok)

	for _, p := range s.Picks() {
		assert.False(t, p.IsCaptain && p.IsViceCaptain)
	}

	assert.ErrorIs(t, s.SetCaptain("9"), ErrPlayerNotInSquad)
	assert.ErrorIs(t, s.SetViceCaptain("9"), ErrPlayerNotInSquad)
}

func TestSelection_RemovingCaptainDropsArmband(t *testing.T) {
	s := NewSelection(100)
	require.NoError(t, s.Add(rec("1", models.PositionMID, 10, 7)))
	require.NoError(t, s.SetCaptain("1"))
	require.NoError(t, s.Remove("1"))

	_, ok := s.Captain()
	assert.False(t, ok)
}

func TestSelection_Clear(t *testing.T) {
	s := NewSelection(100)
	require.NoError(t, s.Add(rec("1", models.PositionMID, 10, 7)))
	require.NoError(t, s.SetFormation("4-4-2"))

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Remaining().Equal(s.Budget()))
	assert.Zero(t, s.TotalPredicted())
	assert.Equal(t, DefaultFormation, s.Formation().String())
}

func TestParseFormation(t *testing.T) {
	tests := []struct {
		label string
		want  Formation
		ok    bool
	}{
		{"3-5-2", Formation{3, 5, 2}, true},
		{"4-4-2", Formation{4, 4, 2}, true},
		{"5-4-1", Formation{5, 4, 1}, true},
		{"3-4-3", Formation{3, 4, 3}, true},
		{" 4-3-3 ", Formation{4, 3, 3}, true},
		{"2-5-3", Formation{}, false},
		{"6-3-1", Formation{}, false},
		{"4-5-2", Formation{}, false},
		{"5-5-0", Formation{}, false},
		{"4-4", Formation{}, false},
		{"a-b-c", Formation{}, false},
		{"", Formation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseFormation(tt.label)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidFormation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormationValid(t *testing.T) {
	assert.True(t, FormationValid(map[models.Position]int{
		models.PositionGK: 1, models.PositionDEF: 4, models.PositionMID: 4, models.PositionFWD: 2,
	}))
	assert.False(t, FormationValid(map[models.Position]int{
		models.PositionGK: 2, models.PositionDEF: 4, models.PositionMID: 4, models.PositionFWD: 2,
	}))
	assert.False(t, FormationValid(map[models.Position]int{
		models.PositionGK: 1, models.PositionDEF: 3, models.PositionMID: 3, models.PositionFWD: 3,
	}))
	assert.False(t, FormationValid(nil))
}

func TestSelection_CanField(t *testing.T) {
	s := NewSelection(200)
	require.NoError(t, s.SetFormation("4-4-2"))
	assert.False(t, s.CanField())

	add := func(pos models.Position, n int) {
		for i := 0; i < n; i++ {
			require.NoError(t, s.Add(rec(fmt.Sprintf("%s-%d", pos, i), pos, 5, 1)))
		}
	}
	add(models.PositionGK, 1)
	add(models.PositionDEF, 4)
	add(models.PositionMID, 4)
	add(models.PositionFWD, 1)
	assert.False(t, s.CanField())

	add(models.PositionFWD, 1)
	assert.True(t, s.CanField())

	require.NoError(t, s.SetFormation("5-3-2"))
	assert.False(t, s.CanField())
	assert.ErrorIs(t, s.SetFormation("1-1-8"), ErrInvalidFormation)
	assert.Equal(t, "5-3-2", s.Formation().String())
}

func TestSelection_Summary(t *testing.T) {
	s := NewSelection(100)
	require.NoError(t, s.Add(rec("1", models.PositionMID, 12.5, 8.4)))
	require.NoError(t, s.SetCaptain("1"))

	sum := s.Summary()
	assert.Equal(t, 100.0, sum.Budget)
	assert.Equal(t, 87.5, sum.Remaining)
	assert.Equal(t, 8.4, sum.TotalPredPts)
	assert.Equal(t, "3-5-2", sum.Formation)
	assert.Equal(t, 1, sum.Counts[models.PositionMID])
	require.Len(t, sum.Players, 1)
	assert.True(t, sum.Players[0].IsCaptain)
}
