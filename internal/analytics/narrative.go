package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/stitts-dev/fpl-scout/internal/models"
)

const (
	SourceRules    = "rules"
	SourceExternal = "external"
)

// Narrative is a short assessment of one player.
type Narrative struct {
	Narrative      string   `json:"narrative"`
	CaptainRating  int      `json:"captainRating"`
	TransferAdvice string   `json:"transferAdvice"`
	RiskFactors    []string `json:"riskFactors"`
	Source         string   `json:"source"`
}

// Narrative policy thresholds.
const (
	veryHighRotation   = 80
	lowRotation        = 20
	highRotation       = 50
	templateOwnership  = 15
	fringeOwnership    = 2
	templatePredPts    = 6
	eliteCaptainPts    = 8
	reliablePredPts    = 4
	strongReliablePts  = 6
	moderateRotation   = 40
	backupKeeperRisk   = 30
	difficultFixtureAt = 4
)

// Score assesses a player from its numeric and status fields. The first
// matching rule decides rating and advice; injury and fixture risks are
// always appended.
func Score(p models.PlayerRecord) Narrative {
	n := Narrative{Source: SourceRules, RiskFactors: []string{}}
	rot, own, pred := p.RotationRiskPct, p.Ownership, p.PredPtsGW

	switch {
	case rot >= veryHighRotation:
		n.Narrative = fmt.Sprintf("%s is a squad player with very limited game time. High rotation risk makes them unsuitable for regular selection.", p.Name)
		n.CaptainRating = 1
		n.TransferAdvice = "Avoid - rarely plays"
		n.RiskFactors = append(n.RiskFactors, "Very high rotation risk", "Limited playing time")
	case own >= templateOwnership && rot <= lowRotation && pred > templatePredPts:
		n.Narrative = fmt.Sprintf("%s is a premium template pick with excellent underlying stats. Strong captaincy potential with consistent returns expected.", p.Name)
		n.CaptainRating = 4
		if pred > eliteCaptainPts {
			n.CaptainRating = 5
		}
		n.TransferAdvice = "Essential - template player"
	case rot <= lowRotation && pred > reliablePredPts:
		n.Narrative = fmt.Sprintf("%s offers solid returns as a regular starter. Good value pick with decent underlying numbers and secure playing time.", p.Name)
		n.CaptainRating = 2
		if pred > strongReliablePts {
			n.CaptainRating = 3
		}
		n.TransferAdvice = "Consider - reliable option"
	case own < fringeOwnership && rot > highRotation:
		n.Narrative = fmt.Sprintf("%s is a fringe player with uncertain game time. Low ownership suggests limited appeal among FPL managers.", p.Name)
		n.CaptainRating = 1
		n.TransferAdvice = "Avoid - rotation concerns"
		n.RiskFactors = append(n.RiskFactors, "High rotation risk", "Low ownership")
	default:
		n.Narrative = fmt.Sprintf("%s represents a moderate option with %.1f predicted points. Monitor team news and form trends before selecting.", p.Name, pred)
		n.CaptainRating = 2
		n.TransferAdvice = "Monitor - potential differential"
		if rot > moderateRotation {
			n.RiskFactors = append(n.RiskFactors, "Moderate rotation risk")
		}
	}

	if p.Position == models.PositionGK && rot > backupKeeperRisk {
		n.RiskFactors = append(n.RiskFactors, "Backup goalkeeper")
	}
	if risk := injuryRisk(p.InjuryStatus); risk != "" {
		n.RiskFactors = append(n.RiskFactors, risk)
	}
	if p.NextOpponentFDR >= difficultFixtureAt {
		n.RiskFactors = append(n.RiskFactors, "Difficult upcoming fixture")
	}
	return n
}

func injuryRisk(s models.InjuryStatus) string {
	switch s {
	case models.StatusDoubt:
		return "Fitness doubt"
	case models.StatusInjured:
		return "Currently injured"
	case models.StatusSuspended:
		return "Suspended"
	}
	return ""
}

// Fingerprint hashes the fields Score and BuildPrompt read, so cached
// narratives can be invalidated when a refresh changes any of them.
func Fingerprint(p models.PlayerRecord) string {
	raw := fmt.Sprintf("%s|%s|%s|%s", BuildPrompt(p), num(p.PredPtsGW), num(p.FormL5), num(p.XGSeason))
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:8])
}

// BuildPrompt renders the deterministic request sent to an external
// narrative generator.
func BuildPrompt(p models.PlayerRecord) string {
	var b strings.Builder

	injury := ""
	if p.InjuryStatus != models.StatusFit {
		injury = fmt.Sprintf(" (Currently %s)", p.InjuryStatus)
	}
	news := ""
	if len(p.News) > 0 {
		news = " News: " + strings.Join(p.News, ". ")
	}

	recent := make([]string, 0, len(p.LastMatches))
	for _, m := range p.LastMatches {
		recent = append(recent, fmt.Sprintf("GW%d: %dpts", m.GW, m.Points))
	}

	b.WriteString("Analyze this Fantasy Premier League player for strategic decision making:\n\n")
	fmt.Fprintf(&b, "%s (%s) - %s%s\n", p.Name, p.Position, p.Team, injury)
	fmt.Fprintf(&b, "Price: £%sm | Ownership: %s%%\n", num(p.Price), num(p.Ownership))
	fmt.Fprintf(&b, "Minutes Last 5 GWs: %s | Form: %.1f\n", num(p.MinutesL5), p.FormL5)
	fmt.Fprintf(&b, "Expected Goals (Season): %.2f | Expected Assists: %.2f\n", p.XGSeason, p.XASeason)
	fmt.Fprintf(&b, "Predicted Points Next GW: %.1f\n", p.PredPtsGW)
	fmt.Fprintf(&b, "Next Opponent: %s (Difficulty: %d/5)\n", p.NextOpponent, p.NextOpponentFDR)
	fmt.Fprintf(&b, "Rotation Risk: %s%%%s\n\n", num(p.RotationRiskPct), news)
	fmt.Fprintf(&b, "Recent form (last 5 GWs): %s\n\n", strings.Join(recent, ", "))
	b.WriteString(`Provide analysis in this exact JSON format:
{
  "analysis": "2-3 sentence tactical analysis focusing on current form, fixtures, and role in team",
  "captainViability": 1-5,
  "transferAdvice": "Brief recommendation: essential/consider/avoid with reason",
  "riskFactors": ["list", "of", "key", "risks"]
}

Be specific about their playing time security, fixture difficulty, and current form trajectory. Consider rotation risk and injury status.`)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
