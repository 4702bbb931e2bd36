package models

// Position is the playing role of a squad member.
type Position string

const (
	PositionGK  Position = "GK"
	PositionDEF Position = "DEF"
	PositionMID Position = "MID"
	PositionFWD Position = "FWD"
)

// Positions lists every position in squad order.
var Positions = []Position{PositionGK, PositionDEF, PositionMID, PositionFWD}

// Valid reports whether p is one of the four known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionGK, PositionDEF, PositionMID, PositionFWD:
		return true
	}
	return false
}

// InjuryStatus is the availability of a player for the next gameweek.
type InjuryStatus string

const (
	StatusFit       InjuryStatus = "Fit"
	StatusDoubt     InjuryStatus = "Doubt"
	StatusInjured   InjuryStatus = "Injured"
	StatusSuspended InjuryStatus = "Suspended"
)

// Unavailable reports whether the player cannot play at all.
func (s InjuryStatus) Unavailable() bool {
	return s == StatusInjured || s == StatusSuspended
}

// PlayerRecord is the analytics-enriched view of one player. Records are
// produced by the derivation engine and treated as read-only afterwards.
type PlayerRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Team      string   `json:"team"`
	Position  Position `json:"position"`
	Price     float64  `json:"price"`
	Ownership float64  `json:"ownership"`

	MinutesL5 float64 `json:"minutesL5"`
	FormL5    float64 `json:"formL5"`
	XGL5      float64 `json:"xG_L5"`
	XAL5      float64 `json:"xA_L5"`
	XGIL5     float64 `json:"xGI_L5"`

	XGSeason  float64 `json:"xG_season"`
	XASeason  float64 `json:"xA_season"`
	XGISeason float64 `json:"xGI_season"`

	PredPtsGW  float64 `json:"predPts_gw"`
	PredPts3GW float64 `json:"predPts_3gw"`
	PredPts6GW float64 `json:"predPts_6gw"`

	NextOpponent    string `json:"nextOpponent"`
	NextOpponentFDR int    `json:"nextOpponentFDR"`

	InjuryStatus    InjuryStatus `json:"injuryStatus"`
	RotationRiskPct float64      `json:"rotationRiskPct"`

	HistoryVsNextOpp []HistoryMatch `json:"historyVsNextOpp"`
	LastMatches      []LastMatch    `json:"lastMatches"`

	News     []string `json:"news,omitempty"`
	PhotoURL string   `json:"photoUrl,omitempty"`

	// Season aggregates kept for ranking and display.
	TotalPoints int `json:"totalPoints"`
	Minutes     int `json:"minutes"`
}

// HistoryMatch is one past meeting with the upcoming opponent.
type HistoryMatch struct {
	Date    string  `json:"date"`
	Minutes int     `json:"minutes"`
	Points  int     `json:"points"`
	XG      float64 `json:"xG"`
	XA      float64 `json:"xA"`
	Shots   int     `json:"shots"`
	Chances int     `json:"chances"`
}

// LastMatch is one entry of the recent-match series.
type LastMatch struct {
	GW      int     `json:"gw"`
	Points  int     `json:"points"`
	Minutes int     `json:"minutes"`
	XG      float64 `json:"xG"`
	XA      float64 `json:"xA"`
	XGI     float64 `json:"xGI"`
}

// TeamInfo is a club as shown to consumers.
type TeamInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}
