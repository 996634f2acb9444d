package compliance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// InvalidChecklistError reports a checklist the compiler cannot accept:
// an empty rule list, a rule without a section, or duplicate rule IDs.
// Anything less structural is coerced to a safe default and reported in
// the compilation notes instead.
type InvalidChecklistError struct {
	Reason string
}

func (e *InvalidChecklistError) Error() string {
	return "invalid checklist: " + e.Reason
}

const sectionWeightTolerance = 1e-6

// Compile validates raw rules into an executable checklist. Unknown
// condition kinds, unusable condition parameters and unknown severities
// are downgraded with a note; rule IDs default to GEN-<position> and rule
// weights to an equal share of 100 within their section.
func Compile(name string, raw []model.RawRule) (*model.Checklist, []string, error) {
	if len(raw) == 0 {
		return nil, nil, &InvalidChecklistError{Reason: "checklist contains no rules"}
	}

	var notes []string
	rules := make([]model.Rule, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	sectionCounts := make(map[string]int)

	for _, rr := range raw {
		sectionCounts[strings.TrimSpace(rr.Section)]++
	}

	for i, rr := range raw {
		section := strings.TrimSpace(rr.Section)
		if section == "" {
			return nil, nil, &InvalidChecklistError{Reason: fmt.Sprintf("rule %d has no section", i+1)}
		}

		id := strings.TrimSpace(rr.RuleID)
		if id == "" {
			id = fmt.Sprintf("GEN-%d", i+1)
		}
		if seen[id] {
			return nil, nil, &InvalidChecklistError{Reason: fmt.Sprintf("duplicate rule id %q", id)}
		}
		seen[id] = true

		item := strings.TrimSpace(rr.Item)
		if item == "" {
			item = id
		}

		key := strings.TrimSpace(rr.ExtractionKey)
		cond, condNote := compileCondition(rr.PassCondition)
		if condNote != "" {
			notes = append(notes, fmt.Sprintf("rule %s: %s", id, condNote))
		}
		if key == "" && cond.Kind != model.CondManual {
			notes = append(notes, fmt.Sprintf("rule %s: no extraction key, the check can only fail", id))
		}

		severity, sevNote := compileSeverity(rr.Severity)
		if sevNote != "" {
			notes = append(notes, fmt.Sprintf("rule %s: %s", id, sevNote))
		}

		weight := 0.0
		switch {
		case rr.Weight == nil:
			weight = 100.0 / float64(sectionCounts[section])
		case *rr.Weight < 0:
			weight = 0
			notes = append(notes, fmt.Sprintf("rule %s: negative weight %v treated as 0", id, *rr.Weight))
		default:
			weight = *rr.Weight
		}

		rules = append(rules, model.Rule{
			ID:            id,
			Section:       section,
			Item:          item,
			Description:   strings.TrimSpace(rr.Description),
			ExtractionKey: key,
			Condition:     cond,
			Severity:      severity,
			Weight:        weight,
			DowngradeNote: condNote,
		})
	}

	order, weights, weightNotes := resolveSectionWeights(raw)
	notes = append(notes, weightNotes...)

	for _, section := range order {
		var total float64
		for _, r := range rules {
			if r.Section == section {
				total += r.Weight
			}
		}
		if total <= 0 {
			notes = append(notes, fmt.Sprintf("section %q has no weighted rules and always scores its full weight", section))
		}
	}

	return &model.Checklist{
		Name:           name,
		Rules:          rules,
		SectionOrder:   order,
		SectionWeights: weights,
	}, notes, nil
}

// resolveSectionWeights assigns each section its share of the 100-point
// total. Explicit section_weight values win; the remainder is split
// equally among unweighted sections; the result is scaled so the shares
// always sum to 100.
func resolveSectionWeights(raw []model.RawRule) ([]string, map[string]float64, []string) {
	var order []string
	explicit := make(map[string]float64)
	seen := make(map[string]bool)

	for _, rr := range raw {
		section := strings.TrimSpace(rr.Section)
		if !seen[section] {
			seen[section] = true
			order = append(order, section)
		}
		if rr.SectionWeight != nil && *rr.SectionWeight >= 0 {
			if _, ok := explicit[section]; !ok {
				explicit[section] = *rr.SectionWeight
			}
		}
	}

	var notes []string
	weights := make(map[string]float64, len(order))

	var explicitSum float64
	var unset int
	for _, section := range order {
		if w, ok := explicit[section]; ok {
			explicitSum += w
		} else {
			unset++
		}
	}

	remainder := 100.0 - explicitSum
	if remainder < 0 {
		remainder = 0
	}
	for _, section := range order {
		if w, ok := explicit[section]; ok {
			weights[section] = w
		} else {
			weights[section] = remainder / float64(unset)
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		for _, section := range order {
			weights[section] = 100.0 / float64(len(order))
		}
		notes = append(notes, "section weights were all zero and were reset to an equal split")
		return order, weights, notes
	}
	if math.Abs(total-100) > sectionWeightTolerance {
		if math.Abs(total-100) > 1 {
			notes = append(notes, fmt.Sprintf("section weights sum to %v and were scaled to 100", total))
		}
		for section, w := range weights {
			weights[section] = w * 100 / total
		}
	}

	return order, weights, notes
}

// compileCondition turns a raw pass condition into its compiled form. The
// second return is a note when the input had to be downgraded.
func compileCondition(rc *model.RawCondition) (model.PassCondition, string) {
	if rc == nil || strings.TrimSpace(rc.Kind) == "" {
		return model.PassCondition{Kind: model.CondNotEmpty}, ""
	}

	kind := strings.ToLower(strings.TrimSpace(rc.Kind))
	if kind == "true" {
		kind = string(model.CondBooleanTrue)
	}

	switch model.ConditionKind(kind) {
	case model.CondNotEmpty, model.CondBooleanTrue, model.CondManual:
		return model.PassCondition{Kind: model.ConditionKind(kind)}, ""

	case model.CondEquals:
		value := model.FormatValue(rc.Value)
		if model.IsMissing(value) {
			return model.PassCondition{Kind: model.CondNotEmpty}, "equals condition has no comparison value, downgraded to not_empty"
		}
		return model.PassCondition{Kind: model.CondEquals, Value: value}, ""

	case model.CondMatches:
		pattern, _ := rc.Value.(string)
		if strings.TrimSpace(pattern) == "" {
			return model.PassCondition{Kind: model.CondNotEmpty}, "matches condition has no pattern, downgraded to not_empty"
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return model.PassCondition{Kind: model.CondNotEmpty}, fmt.Sprintf("invalid pattern %q, downgraded to not_empty", pattern)
		}
		return model.PassCondition{Kind: model.CondMatches, Value: pattern}, ""

	case model.CondOneOf:
		values := stringList(rc.Value)
		if len(values) == 0 {
			return model.PassCondition{Kind: model.CondNotEmpty}, "one_of condition has no allowed values, downgraded to not_empty"
		}
		return model.PassCondition{Kind: model.CondOneOf, Values: values}, ""

	case model.CondMinLength:
		n, ok := intValue(rc.Value)
		if !ok || n < 1 {
			return model.PassCondition{Kind: model.CondNotEmpty}, "min_length condition needs a positive length, downgraded to not_empty"
		}
		return model.PassCondition{Kind: model.CondMinLength, MinLength: n}, ""

	default:
		return model.PassCondition{Kind: model.CondNotEmpty}, fmt.Sprintf("unknown pass condition %q, downgraded to not_empty", rc.Kind)
	}
}

func compileSeverity(s string) (model.Severity, string) {
	switch model.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case model.SeverityFail:
		return model.SeverityFail, ""
	case model.SeverityWarning:
		return model.SeverityWarning, ""
	case model.SeverityInfo:
		return model.SeverityInfo, ""
	case "":
		return model.SeverityFail, ""
	default:
		return model.SeverityFail, fmt.Sprintf("unknown severity %q, treated as fail", s)
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := model.FormatValue(item); !model.IsMissing(s) {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
