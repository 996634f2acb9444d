package compliance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Score credit earned per verdict. Warnings and manual reviews earn
// partial credit; a failing info rule keeps full credit so informational
// findings never move the score.
const (
	creditFull    = 1.0
	creditPartial = 0.5
	creditNone    = 0.0
)

// Overall score thresholds.
const (
	compliantThreshold   = 80
	needsReviewThreshold = 50
)

// Sections scoring below this share of their weight are called out in the
// report summary, worst first, at most three.
const (
	weakSectionRatio   = 0.6
	maxSummarySections = 3
)

func ruleCredit(rule model.Rule, verdict model.Verdict) float64 {
	switch verdict.Status {
	case model.VerdictPass:
		return creditFull
	case model.VerdictManualReview:
		return creditPartial
	case model.VerdictWarning:
		if rule.Severity == model.SeverityInfo {
			return creditFull
		}
		return creditPartial
	default:
		return creditNone
	}
}

// AggregateSection folds per-rule verdicts into a section result. Rules
// and verdicts must be aligned index for index. A section whose rules
// carry no weight at all scores its full section weight.
func AggregateSection(name string, rules []model.Rule, verdicts []model.Verdict, sectionWeight float64) model.SectionResult {
	var totalWeight, earned float64
	for i, rule := range rules {
		if rule.Weight <= 0 {
			continue
		}
		totalWeight += rule.Weight
		earned += rule.Weight * ruleCredit(rule, verdicts[i])
	}

	score := sectionWeight
	if totalWeight > 0 {
		score = sectionWeight * (earned / totalWeight)
	}
	if score < 0 {
		score = 0
	}
	if score > sectionWeight {
		score = sectionWeight
	}

	return model.SectionResult{
		Name:   name,
		Score:  score,
		Weight: sectionWeight,
		Items:  verdicts,
	}
}

// OverallScore sums section scores, rounds to the nearest integer and
// clamps to [0, 100].
func OverallScore(sections []model.SectionResult) int {
	var total float64
	for _, s := range sections {
		total += s.Score
	}
	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// StatusFor maps an overall score to a compliance status.
func StatusFor(score int) model.ComplianceStatus {
	switch {
	case score >= compliantThreshold:
		return model.StatusCompliant
	case score >= needsReviewThreshold:
		return model.StatusNeedsReview
	default:
		return model.StatusNonCompliant
	}
}

// Summarize produces the one-sentence report summary naming the weakest
// sections. Ties keep checklist order.
func Summarize(sections []model.SectionResult) string {
	type weakSection struct {
		name  string
		ratio float64
		order int
	}

	var weak []weakSection
	for i, s := range sections {
		if s.Weight <= 0 {
			continue
		}
		ratio := s.Score / s.Weight
		if ratio < weakSectionRatio {
			weak = append(weak, weakSection{name: s.Name, ratio: ratio, order: i})
		}
	}
	if len(weak) == 0 {
		return "All checklist sections meet their compliance thresholds."
	}

	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].ratio != weak[j].ratio {
			return weak[i].ratio < weak[j].ratio
		}
		return weak[i].order < weak[j].order
	})
	if len(weak) > maxSummarySections {
		weak = weak[:maxSummarySections]
	}

	parts := make([]string, len(weak))
	for i, w := range weak {
		parts[i] = fmt.Sprintf("%s (%d%%)", w.name, int(math.Round(w.ratio*100)))
	}
	return fmt.Sprintf("Compliance gaps concentrate in %s.", strings.Join(parts, ", "))
}
