package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidExternalNarrative = errors.New("invalid external narrative")

// ExternalNarrative is the JSON shape an external generator must return.
type ExternalNarrative struct {
	Analysis         string   `json:"analysis"`
	CaptainViability int      `json:"captainViability"`
	TransferAdvice   string   `json:"transferAdvice"`
	RiskFactors      []string `json:"riskFactors"`
}

type externalWire struct {
	Analysis         *string   `json:"analysis"`
	CaptainViability *float64  `json:"captainViability"`
	TransferAdvice   *string   `json:"transferAdvice"`
	RiskFactors      *[]string `json:"riskFactors"`
}

// ParseExternalNarrative extracts and validates the JSON object in text.
// All four fields must be present, no others are allowed, and
// captainViability must be an integer from 1 to 5.
func ParseExternalNarrative(text string) (ExternalNarrative, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ExternalNarrative{}, fmt.Errorf("%w: no JSON object in response", ErrInvalidExternalNarrative)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.DisallowUnknownFields()
	var w externalWire
	if err := dec.Decode(&w); err != nil {
		return ExternalNarrative{}, fmt.Errorf("%w: %v", ErrInvalidExternalNarrative, err)
	}

	switch {
	case w.Analysis == nil || strings.TrimSpace(*w.Analysis) == "":
		return ExternalNarrative{}, fmt.Errorf("%w: missing analysis", ErrInvalidExternalNarrative)
	case w.CaptainViability == nil:
		return ExternalNarrative{}, fmt.Errorf("%w: missing captainViability", ErrInvalidExternalNarrative)
	case w.TransferAdvice == nil || strings.TrimSpace(*w.TransferAdvice) == "":
		return ExternalNarrative{}, fmt.Errorf("%w: missing transferAdvice", ErrInvalidExternalNarrative)
	case w.RiskFactors == nil:
		return ExternalNarrative{}, fmt.Errorf("%w: missing riskFactors", ErrInvalidExternalNarrative)
	}

	rating := *w.CaptainViability
	if rating != float64(int(rating)) || rating < 1 || rating > 5 {
		return ExternalNarrative{}, fmt.Errorf("%w: captainViability %v outside 1-5", ErrInvalidExternalNarrative, rating)
	}

	return ExternalNarrative{
		Analysis:         strings.TrimSpace(*w.Analysis),
		CaptainViability: int(rating),
		TransferAdvice:   strings.TrimSpace(*w.TransferAdvice),
		RiskFactors:      *w.RiskFactors,
	}, nil
}

// Merge overlays an external narrative on the rule-based baseline. The text
// is replaced and new risk factors are appended; rating and advice always
// stay with the baseline.
func Merge(base Narrative, ext ExternalNarrative) Narrative {
	out := base
	out.Narrative = ext.Analysis
	out.Source = SourceExternal

	seen := make(map[string]struct{}, len(base.RiskFactors)+len(ext.RiskFactors))
	risks := make([]string, 0, len(base.RiskFactors)+len(ext.RiskFactors))
	for _, r := range append(append([]string{}, base.RiskFactors...), ext.RiskFactors...) {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		risks = append(risks, r)
	}
	out.RiskFactors = risks
	return out
}
