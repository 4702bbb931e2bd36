package analytics

import "github.com/stitts-dev/fpl-scout/internal/models"

// player builds a fit, nailed midfielder and applies the overrides.
func player(id, name string, opts ...func(*models.PlayerRecord)) models.PlayerRecord {
	p := models.PlayerRecord{
		ID:              id,
		Name:            name,
		Team:            "ARS",
		Position:        models.PositionMID,
		Price:           7.0,
		Ownership:       10,
		MinutesL5:       450,
		FormL5:          5,
		PredPtsGW:       5,
		PredPts3GW:      15,
		PredPts6GW:      30,
		NextOpponent:    "CHE (H)",
		NextOpponentFDR: 3,
		InjuryStatus:    models.StatusFit,
		RotationRiskPct: 10,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withPrice(v float64) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.Price = v }
}

func withOwnership(v float64) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.Ownership = v }
}

func withRotation(v float64) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.RotationRiskPct = v }
}

func withPred(v float64) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) {
		p.PredPtsGW, p.PredPts3GW, p.PredPts6GW = v, 3*v, 6*v
	}
}

func withMinutes(v float64) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.MinutesL5 = v }
}

func withStatus(s models.InjuryStatus) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.InjuryStatus = s }
}

func withPosition(pos models.Position) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.Position = pos }
}

func withTeam(team string) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.Team = team }
}

func withFDR(v int) func(*models.PlayerRecord) {
	return func(p *models.PlayerRecord) { p.NextOpponentFDR = v }
}

func ids(players []models.PlayerRecord) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
