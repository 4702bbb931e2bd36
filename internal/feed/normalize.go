package feed

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is a player entry with identifiers resolved to ints and text trimmed.
// Numeric statistics stay as Number so callers can tell absent from zero.
type Entry struct {
	ID          int
	Name        string
	FirstName   string
	SecondName  string
	TeamID      int
	ElementType int
	Status      string
	News        string
	Photo       string

	NowCost                  Number
	SelectedByPercent        Number
	Minutes                  Number
	TotalPoints              Number
	Form                     Number
	EPNext                   Number
	ExpectedGoals            Number
	ExpectedAssists          Number
	ExpectedGoalInvolvements Number
	ChanceOfPlayingNextRound Number
}

// Club is a team keyed by provider id.
type Club struct {
	ID        int
	Name      string
	ShortName string
}

// Match is an engine-neutral fixture. Order is the index in the raw array.
type Match struct {
	ID         int
	Gameweek   int
	HomeTeam   int
	AwayTeam   int
	HomeFDR    Number
	AwayFDR    Number
	Kickoff    time.Time
	HasKickoff bool
	Finished   bool
	Order      int
}

// Involves reports whether teamID plays in the match.
func (m Match) Involves(teamID int) bool {
	return m.HomeTeam == teamID || m.AwayTeam == teamID
}

// Dataset is the normalized form of one bootstrap plus fixtures fetch.
type Dataset struct {
	Entries         []Entry
	Clubs           map[int]Club
	Matches         []Match
	CurrentGameweek int
	Skipped         int
}

// Normalize converts raw provider payloads into a Dataset. Player entries
// that are not objects or carry no usable id are counted in Skipped.
func Normalize(b *Bootstrap, fixtures []Fixture) *Dataset {
	ds := &Dataset{
		Clubs:           make(map[int]Club),
		CurrentGameweek: 1,
	}
	if b == nil {
		return ds
	}

	for _, t := range b.Teams {
		if !t.ID.Valid {
			continue
		}
		id := t.ID.Int(0)
		ds.Clubs[id] = Club{
			ID:        id,
			Name:      strings.TrimSpace(string(t.Name)),
			ShortName: strings.ToUpper(strings.TrimSpace(string(t.ShortName))),
		}
	}

	ds.Entries = make([]Entry, 0, len(b.Elements))
	for _, raw := range b.Elements {
		var el Element
		if err := json.Unmarshal(raw, &el); err != nil || !el.ID.Valid {
			ds.Skipped++
			continue
		}
		ds.Entries = append(ds.Entries, entryFromElement(el))
	}

	ds.Matches = make([]Match, 0, len(fixtures))
	for i, f := range fixtures {
		ds.Matches = append(ds.Matches, matchFromFixture(f, i))
	}

	ds.CurrentGameweek = CurrentGameweek(b.Events)
	return ds
}

func entryFromElement(el Element) Entry {
	name := strings.TrimSpace(string(el.WebName))
	if name == "" {
		name = strings.TrimSpace(string(el.FirstName) + " " + string(el.SecondName))
	}
	return Entry{
		ID:                       el.ID.Int(0),
		Name:                     name,
		FirstName:                strings.TrimSpace(string(el.FirstName)),
		SecondName:               strings.TrimSpace(string(el.SecondName)),
		TeamID:                   el.Team.Int(0),
		ElementType:              el.ElementType.Int(0),
		Status:                   strings.ToLower(strings.TrimSpace(string(el.Status))),
		News:                     strings.TrimSpace(string(el.News)),
		Photo:                    strings.TrimSpace(string(el.Photo)),
		NowCost:                  el.NowCost,
		SelectedByPercent:        el.SelectedByPercent,
		Minutes:                  el.Minutes,
		TotalPoints:              el.TotalPoints,
		Form:                     el.Form,
		EPNext:                   el.EPNext,
		ExpectedGoals:            el.ExpectedGoals,
		ExpectedAssists:          el.ExpectedAssists,
		ExpectedGoalInvolvements: el.ExpectedGoalInvolvements,
		ChanceOfPlayingNextRound: el.ChanceOfPlayingNextRound,
	}
}

func matchFromFixture(f Fixture, order int) Match {
	m := Match{
		ID:       f.ID.Int(0),
		Gameweek: f.Event.Int(0),
		HomeTeam: f.TeamH.Int(0),
		AwayTeam: f.TeamA.Int(0),
		HomeFDR:  f.TeamHDifficulty,
		AwayFDR:  f.TeamADifficulty,
		Finished: bool(f.Finished),
		Order:    order,
	}
	if kt := strings.TrimSpace(string(f.KickoffTime)); kt != "" {
		if t, err := time.Parse(time.RFC3339, kt); err == nil {
			m.Kickoff = t.UTC()
			m.HasKickoff = true
		}
	}
	return m
}

// CurrentGameweek picks the gameweek in progress: the event flagged current,
// else the one before the next event, else the last finished one, else 1.
func CurrentGameweek(events []Event) int {
	lastFinished := 0
	for _, e := range events {
		id := e.ID.Int(0)
		if id <= 0 {
			continue
		}
		if e.IsCurrent {
			return id
		}
		if e.Finished && id > lastFinished {
			lastFinished = id
		}
	}
	for _, e := range events {
		if e.IsNext {
			if id := e.ID.Int(0) - 1; id >= 1 {
				return id
			}
			return 1
		}
	}
	if lastFinished > 0 {
		return lastFinished
	}
	return 1
}
