package feed

import (
	"encoding/json"
	"fmt"
)

// Bootstrap is the provider's bootstrap-static payload. Elements are kept
// raw so one malformed entry cannot fail the whole decode.
type Bootstrap struct {
	Elements     []json.RawMessage `json:"elements"`
	Teams        []Team            `json:"teams"`
	ElementTypes []ElementType     `json:"element_types"`
	Events       []Event           `json:"events"`
}

// Element is one raw player entry.
type Element struct {
	ID                       Number `json:"id"`
	FirstName                Text   `json:"first_name"`
	SecondName               Text   `json:"second_name"`
	WebName                  Text   `json:"web_name"`
	Team                     Number `json:"team"`
	ElementType              Number `json:"element_type"`
	NowCost                  Number `json:"now_cost"`
	SelectedByPercent        Number `json:"selected_by_percent"`
	Minutes                  Number `json:"minutes"`
	TotalPoints              Number `json:"total_points"`
	Form                     Number `json:"form"`
	EPNext                   Number `json:"ep_next"`
	ExpectedGoals            Number `json:"expected_goals"`
	ExpectedAssists          Number `json:"expected_assists"`
	ExpectedGoalInvolvements Number `json:"expected_goal_involvements"`
	Status                   Text   `json:"status"`
	ChanceOfPlayingNextRound Number `json:"chance_of_playing_next_round"`
	News                     Text   `json:"news"`
	Photo                    Text   `json:"photo"`
}

type Team struct {
	ID        Number `json:"id"`
	Name      Text   `json:"name"`
	ShortName Text   `json:"short_name"`
	Code      Number `json:"code"`
}

type ElementType struct {
	ID                Number `json:"id"`
	SingularNameShort Text   `json:"singular_name_short"`
	PluralName        Text   `json:"plural_name"`
}

type Event struct {
	ID           Number `json:"id"`
	Name         Text   `json:"name"`
	DeadlineTime Text   `json:"deadline_time"`
	Finished     Flag   `json:"finished"`
	IsPrevious   Flag   `json:"is_previous"`
	IsCurrent    Flag   `json:"is_current"`
	IsNext       Flag   `json:"is_next"`
}

// Fixture is one raw entry of the fixtures array.
type Fixture struct {
	ID              Number `json:"id"`
	Event           Number `json:"event"`
	Finished        Flag   `json:"finished"`
	KickoffTime     Text   `json:"kickoff_time"`
	TeamH           Number `json:"team_h"`
	TeamA           Number `json:"team_a"`
	TeamHDifficulty Number `json:"team_h_difficulty"`
	TeamADifficulty Number `json:"team_a_difficulty"`
	TeamHScore      Number `json:"team_h_score"`
	TeamAScore      Number `json:"team_a_score"`
}

// ParseBootstrap decodes a bootstrap-static body.
func ParseBootstrap(data []byte) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bootstrap payload: %w", err)
	}
	return &b, nil
}

// ParseFixtures decodes a fixtures body. Entries that are not JSON objects
// are dropped.
func ParseFixtures(data []byte) ([]Fixture, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures payload: %w", err)
	}
	fixtures := make([]Fixture, 0, len(raw))
	for _, r := range raw {
		var f Fixture
		if err := json.Unmarshal(r, &f); err != nil {
			continue
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// ElementSummary is the element-summary/{id}/ payload. Only the per-match
// history of the current season is decoded.
type ElementSummary struct {
	History []HistoryRow `json:"history"`
}

type HistoryRow struct {
	Element                  Number `json:"element"`
	Fixture                  Number `json:"fixture"`
	OpponentTeam             Number `json:"opponent_team"`
	Round                    Number `json:"round"`
	WasHome                  Flag   `json:"was_home"`
	KickoffTime              Text   `json:"kickoff_time"`
	Minutes                  Number `json:"minutes"`
	TotalPoints              Number `json:"total_points"`
	ExpectedGoals            Number `json:"expected_goals"`
	ExpectedAssists          Number `json:"expected_assists"`
	ExpectedGoalInvolvements Number `json:"expected_goal_involvements"`
}

// ParseElementSummary decodes an element-summary body.
func ParseElementSummary(data []byte) (*ElementSummary, error) {
	var s ElementSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode element summary: %w", err)
	}
	return &s, nil
}
