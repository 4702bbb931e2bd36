package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/feed"
	"github.com/stitts-dev/fpl-scout/internal/models"
)

const (
	UnknownTeam     = "UNK"
	UnknownOpponent = "TBD"
	NeutralFDR      = 3

	photoBaseURL = "https://resources.premierleague.com/premierleague/photos/players/250x250/p"
)

// Context is everything a single derivation needs besides the entry itself.
// Now is only used to date synthetic history entries.
type Context struct {
	Clubs           map[int]feed.Club
	Matches         []feed.Match
	CurrentGameweek int
	Now             time.Time
}

// NewContext builds a derivation context from a normalized dataset.
func NewContext(ds *feed.Dataset, now time.Time) *Context {
	return &Context{
		Clubs:           ds.Clubs,
		Matches:         ds.Matches,
		CurrentGameweek: ds.CurrentGameweek,
		Now:             now.UTC(),
	}
}

func (c *Context) gamesElapsed() int {
	if c.CurrentGameweek < 1 {
		return 1
	}
	return c.CurrentGameweek
}

// NextMatch returns the earliest unfinished fixture involving teamID.
// Fixtures without a kickoff time sort after dated ones; ties keep raw order.
func (c *Context) NextMatch(teamID int) (feed.Match, bool) {
	var best feed.Match
	found := false
	for _, m := range c.Matches {
		if m.Finished || !m.Involves(teamID) {
			continue
		}
		if !found || kicksOffBefore(m, best) {
			best = m
			found = true
		}
	}
	return best, found
}

func kicksOffBefore(a, b feed.Match) bool {
	switch {
	case a.HasKickoff && !b.HasKickoff:
		return true
	case !a.HasKickoff && b.HasKickoff:
		return false
	case a.HasKickoff && b.HasKickoff && !a.Kickoff.Equal(b.Kickoff):
		return a.Kickoff.Before(b.Kickoff)
	}
	return a.Order < b.Order
}

// fixtureView is the next fixture seen from one team's side.
type fixtureView struct {
	OpponentID int
	Label      string
	FDR        int
	Home       bool
	Known      bool
}

func (c *Context) nextFixture(teamID int) fixtureView {
	m, ok := c.NextMatch(teamID)
	if !ok {
		return fixtureView{Label: UnknownOpponent, FDR: NeutralFDR}
	}

	home := m.HomeTeam == teamID
	oppID, fdr, side := m.HomeTeam, m.AwayFDR, "A"
	if home {
		oppID, fdr, side = m.AwayTeam, m.HomeFDR, "H"
	}

	short := UnknownOpponent
	club, known := c.Clubs[oppID]
	if known && club.ShortName != "" {
		short = club.ShortName
	} else {
		known = false
	}

	return fixtureView{
		OpponentID: oppID,
		Label:      fmt.Sprintf("%s (%s)", short, side),
		FDR:        normalizeFDR(fdr),
		Home:       home,
		Known:      known,
	}
}

func normalizeFDR(n feed.Number) int {
	if !n.Valid || n.Value != math.Trunc(n.Value) || n.Value < 1 || n.Value > 5 {
		return NeutralFDR
	}
	return int(n.Value)
}

// Derive turns one normalized entry into a PlayerRecord. Missing or
// malformed numeric fields degrade to zero, never to an error.
func Derive(e feed.Entry, ctx *Context) models.PlayerRecord {
	if ctx == nil {
		ctx = &Context{}
	}

	position := MapPosition(e.ElementType)
	status := MapStatus(e.Status)

	team := UnknownTeam
	if club, ok := ctx.Clubs[e.TeamID]; ok && club.ShortName != "" {
		team = club.ShortName
	}

	minutes := nonNegative(e.Minutes.Or(0))
	totalPoints := e.TotalPoints.Or(0)
	ownership := clamp(e.SelectedByPercent.Or(0), 0, 100)
	form := e.Form.Or(0)
	xg := nonNegative(e.ExpectedGoals.Or(0))
	xa := nonNegative(e.ExpectedAssists.Or(0))
	xgi := nonNegative(e.ExpectedGoalInvolvements.Or(0))
	price := math.Round(nonNegative(e.NowCost.Or(0))) / 10

	predGW := predictedPoints(e)
	fixture := ctx.nextFixture(e.TeamID)

	risk := RotationRisk(RotationInputs{
		Position:     position,
		Minutes:      minutes,
		GamesElapsed: ctx.gamesElapsed(),
		TotalPoints:  totalPoints,
		Ownership:    ownership,
		Price:        price,
		Status:       status,
	})

	gamesPlayed := estimateGamesPlayed(minutes)
	window := math.Min(5, float64(gamesPlayed)) / float64(gamesPlayed)

	rec := models.PlayerRecord{
		ID:        strconv.Itoa(e.ID),
		Name:      e.Name,
		Team:      team,
		Position:  position,
		Price:     price,
		Ownership: ownership,

		MinutesL5: math.Min(450, minutes),
		FormL5:    form,
		XGL5:      round2(xg * window),
		XAL5:      round2(xa * window),
		XGIL5:     round2(xgi * window),

		XGSeason:  xg,
		XASeason:  xa,
		XGISeason: xgi,

		PredPtsGW:  predGW,
		PredPts3GW: 3 * predGW,
		PredPts6GW: 6 * predGW,

		NextOpponent:    fixture.Label,
		NextOpponentFDR: fixture.FDR,

		InjuryStatus:    status,
		RotationRiskPct: risk,

		TotalPoints: int(totalPoints),
		Minutes:     int(minutes),
	}

	rec.LastMatches = syntheticLastMatches(e.ID, ctx, minutes, totalPoints, xg, xa, xgi)
	rec.HistoryVsNextOpp = syntheticHistory(e.ID, position, ctx, fixture, minutes, totalPoints)

	if e.News != "" {
		rec.News = []string{e.News}
	}
	if e.Photo != "" {
		rec.PhotoURL = photoBaseURL + strings.Replace(e.Photo, ".jpg", ".png", 1)
	}

	return rec
}

// predictedPoints uses the feed's expected points for the next round, then
// recent form, then zero.
func predictedPoints(e feed.Entry) float64 {
	if e.EPNext.Valid {
		return nonNegative(e.EPNext.Value)
	}
	if e.Form.Valid {
		return nonNegative(e.Form.Value)
	}
	return 0
}

func estimateGamesPlayed(minutes float64) int {
	g := int(minutes / 90)
	if g < 1 {
		return 1
	}
	return g
}

// DeriveAll derives every entry. A record that panics is logged and skipped;
// the rest of the batch is still returned in input order.
func DeriveAll(entries []feed.Entry, ctx *Context, log logrus.FieldLogger) ([]models.PlayerRecord, int) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	records := make([]models.PlayerRecord, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		rec, err := safeDerive(e, ctx)
		if err != nil {
			skipped++
			log.WithFields(logrus.Fields{
				"player_id": e.ID,
				"name":      e.Name,
			}).WithError(err).Warn("Skipping player record that failed derivation")
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func safeDerive(e feed.Entry, ctx *Context) (rec models.PlayerRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("derivation panic: %v", r)
		}
	}()
	return Derive(e, ctx), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nonNegative(v float64) float64 {
	return math.Max(0, v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
