package model

import (
	"encoding/json"
)

// ConditionKind identifies one of the supported pass condition checks.
type ConditionKind string

const (
	CondNotEmpty    ConditionKind = "not_empty"
	CondEquals      ConditionKind = "equals"
	CondMatches     ConditionKind = "matches"
	CondOneOf       ConditionKind = "one_of"
	CondMinLength   ConditionKind = "min_length"
	CondBooleanTrue ConditionKind = "boolean_true"
	CondManual      ConditionKind = "manual"
)

// PassCondition is the check applied to an extracted value. Depending on
// Kind, at most one of Value, Values or MinLength carries the parameter.
type PassCondition struct {
	Kind      ConditionKind `json:"kind"`
	Value     string        `json:"value,omitempty"`      // equals, matches
	Values    []string      `json:"values,omitempty"`     // one_of
	MinLength int           `json:"min_length,omitempty"` // min_length
}

// Severity controls how a failing rule affects its verdict and the score
type Severity string

const (
	SeverityFail    Severity = "fail"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule is a single compiled checklist entry. DowngradeNote is set when
// the compiler had to coerce an unusable pass condition to not_empty.
type Rule struct {
	ID            string        `json:"rule_id"`
	Section       string        `json:"section"`
	Item          string        `json:"item"`
	Description   string        `json:"description,omitempty"`
	ExtractionKey string        `json:"extraction_key"`
	Condition     PassCondition `json:"pass_condition"`
	Severity      Severity      `json:"severity"`
	Weight        float64       `json:"weight"`
	DowngradeNote string        `json:"downgrade_note,omitempty"`
}

// Checklist is a compiled, ordered rule set with resolved section weights.
type Checklist struct {
	Name           string             `json:"name"`
	Rules          []Rule             `json:"rules"`
	SectionOrder   []string           `json:"section_order"`
	SectionWeights map[string]float64 `json:"section_weights"`
}

// SectionRules returns the rules of one section in definition order.
func (c *Checklist) SectionRules(section string) []Rule {
	var rules []Rule
	for _, r := range c.Rules {
		if r.Section == section {
			rules = append(rules, r)
		}
	}
	return rules
}

// RawCondition is an uncompiled pass condition as uploaded checklists and
// parser responses carry it: either a bare kind string ("not_empty") or a
// {"kind": ..., "value": ...} object.
type RawCondition struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

func (rc *RawCondition) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		rc.Kind = kind
		rc.Value = nil
		return nil
	}
	type plain RawCondition
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*rc = RawCondition(obj)
	return nil
}

// RawRule is an unvalidated checklist entry before compilation. Missing
// fields are filled in with defaults by the checklist compiler. Weight and
// SectionWeight are pointers so an explicit zero survives the trip from
// JSON.
type RawRule struct {
	RuleID        string        `json:"rule_id,omitempty"`
	Section       string        `json:"section"`
	SectionWeight *float64      `json:"section_weight,omitempty"`
	Item          string        `json:"item"`
	Description   string        `json:"description,omitempty"`
	ExtractionKey string        `json:"extraction_key"`
	PassCondition *RawCondition `json:"pass_condition,omitempty"`
	Severity      string        `json:"severity,omitempty"`
	Weight        *float64      `json:"weight,omitempty"`
}
