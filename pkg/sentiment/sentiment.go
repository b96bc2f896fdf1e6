// Package sentiment scores short news texts with the VADER lexicon and
// maps compound scores onto the three labels the dashboard displays.
package sentiment

import (
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Label classifies a compound score.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"

	// compoundThreshold splits the compound score into the three labels.
	compoundThreshold = 0.05
)

// Score is the VADER polarity breakdown for one text.
type Score struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
	Label    Label   `json:"label"`
}

// Analyze scores a single text. Empty input is neutral.
func Analyze(text string) Score {
	text = strings.TrimSpace(text)
	if text == "" {
		return Score{Label: Neutral}
	}
	polarity := sentitext.PolarityScore(sentitext.Parse(text, lexicon.DefaultLexicon))
	return Score{
		Compound: polarity.Compound,
		Positive: polarity.Positive,
		Neutral:  polarity.Neutral,
		Negative: polarity.Negative,
		Label:    labelFor(polarity.Compound),
	}
}

// AnalyzeHeadline scores the title and description of one article the way
// the news page does: title and description joined by a full stop.
func AnalyzeHeadline(title, description string) Score {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(title) != "" {
		parts = append(parts, strings.TrimSpace(title))
	}
	if strings.TrimSpace(description) != "" {
		parts = append(parts, strings.TrimSpace(description))
	}
	return Analyze(strings.Join(parts, ". "))
}

func labelFor(compound float64) Label {
	switch {
	case compound >= compoundThreshold:
		return Positive
	case compound <= -compoundThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Distribution aggregates the labels of a batch of scores.
type Distribution struct {
	Count           int     `json:"count"`
	AverageCompound float64 `json:"average_compound"`
	Positive        int     `json:"positive"`
	Neutral         int     `json:"neutral"`
	Negative        int     `json:"negative"`
}

// Aggregate summarises a batch of scores into a label distribution.
func Aggregate(scores []Score) Distribution {
	dist := Distribution{Count: len(scores)}
	if len(scores) == 0 {
		return dist
	}
	var sum float64
	for _, s := range scores {
		sum += s.Compound
		switch s.Label {
		case Positive:
			dist.Positive++
		case Negative:
			dist.Negative++
		default:
			dist.Neutral++
		}
	}
	dist.AverageCompound = sum / float64(len(scores))
	return dist
}
