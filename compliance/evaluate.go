package compliance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Tokens accepted as an affirmative answer by boolean_true checks.
var truthyTokens = map[string]bool{
	"true":    true,
	"yes":     true,
	"1":       true,
	"present": true,
}

// EvaluateRule applies one rule's pass condition to the fact store and
// returns a verdict. Evaluation is total: a missing key is seen as the
// NotFound sentinel and manual rules always come back as manual_review.
func EvaluateRule(rule model.Rule, facts model.FactStore) model.Verdict {
	found := facts.StringValue(rule.ExtractionKey)

	verdict := model.Verdict{
		RuleID:     rule.ID,
		Section:    rule.Section,
		Item:       rule.Item,
		FoundValue: found,
	}

	if rule.Condition.Kind == model.CondManual {
		verdict.Status = model.VerdictManualReview
		verdict.Recommendation = fmt.Sprintf("%s requires manual verification.", rule.Item)
		return verdict
	}

	if conditionHolds(rule.Condition, found) {
		verdict.Status = model.VerdictPass
		return verdict
	}

	if rule.Severity == model.SeverityFail {
		verdict.Status = model.VerdictFail
		verdict.Recommendation = recommendation(rule, "check failed")
	} else {
		verdict.Status = model.VerdictWarning
		verdict.Recommendation = recommendation(rule, "needs attention")
	}
	return verdict
}

func recommendation(rule model.Rule, outcome string) string {
	if rule.Description != "" {
		return fmt.Sprintf("%s %s. %s", rule.Item, outcome, rule.Description)
	}
	return fmt.Sprintf("%s %s.", rule.Item, outcome)
}

// conditionHolds decides whether a display value satisfies a pass
// condition. Unknown kinds never hold; the compiler prevents them from
// reaching this point.
func conditionHolds(cond model.PassCondition, value string) bool {
	switch cond.Kind {
	case model.CondNotEmpty:
		return !model.IsMissing(value)
	case model.CondEquals:
		return model.Normalize(value) == model.Normalize(cond.Value)
	case model.CondMatches:
		re, err := regexp.Compile(cond.Value)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	case model.CondOneOf:
		norm := model.Normalize(value)
		for _, allowed := range cond.Values {
			if norm == model.Normalize(allowed) {
				return true
			}
		}
		return false
	case model.CondMinLength:
		return len([]rune(strings.TrimSpace(value))) >= cond.MinLength
	case model.CondBooleanTrue:
		return truthyTokens[model.Normalize(value)]
	default:
		return false
	}
}
