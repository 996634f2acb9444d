package compliance

import (
	"errors"
	"strings"
	"testing"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

func f(v float64) *float64 { return &v }

func TestCompileDefaults(t *testing.T) {
	raw := []model.RawRule{
		{Section: "Security", Item: "HTTPS", ExtractionKey: "site_url"},
		{Section: "Security", ExtractionKey: "hsts_header"},
	}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %v", notes)
	}

	first := cl.Rules[0]
	if first.ID != "GEN-1" {
		t.Errorf("Expected 'GEN-1', got '%s'", first.ID)
	}
	if first.Condition.Kind != model.CondNotEmpty {
		t.Errorf("Expected default condition not_empty, got '%s'", first.Condition.Kind)
	}
	if first.Severity != model.SeverityFail {
		t.Errorf("Expected default severity fail, got '%s'", first.Severity)
	}
	if first.Weight != 50 {
		t.Errorf("Expected default weight 100/2=50, got %v", first.Weight)
	}

	second := cl.Rules[1]
	if second.ID != "GEN-2" {
		t.Errorf("Expected 'GEN-2', got '%s'", second.ID)
	}
	if second.Item != "GEN-2" {
		t.Errorf("Expected item to default to the rule id, got '%s'", second.Item)
	}

	if w := cl.SectionWeights["Security"]; w != 100 {
		t.Errorf("Expected single section weight 100, got %v", w)
	}
}

func TestCompileGeneratedIDsFollowPosition(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "SEC-01", Section: "S", ExtractionKey: "a"},
		{Section: "S", ExtractionKey: "b"},
		{Section: "S", ExtractionKey: "c"},
	}

	cl, _, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if cl.Rules[1].ID != "GEN-2" || cl.Rules[2].ID != "GEN-3" {
		t.Errorf("Expected GEN ids by input position, got '%s' and '%s'", cl.Rules[1].ID, cl.Rules[2].ID)
	}
}

func TestCompileUnknownConditionDowngraded(t *testing.T) {
	raw := []model.RawRule{
		{
			RuleID:        "X-1",
			Section:       "S",
			ExtractionKey: "k",
			PassCondition: &model.RawCondition{Kind: "fuzzy_llm_check"},
		},
	}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if cl.Rules[0].Condition.Kind != model.CondNotEmpty {
		t.Errorf("Expected downgrade to not_empty, got '%s'", cl.Rules[0].Condition.Kind)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "fuzzy_llm_check") {
		t.Errorf("Expected a note naming the unknown kind, got %v", notes)
	}
	if !strings.Contains(cl.Rules[0].DowngradeNote, "fuzzy_llm_check") {
		t.Errorf("Expected the rule to record the downgrade, got %q", cl.Rules[0].DowngradeNote)
	}
}

func TestCompileConditionParameters(t *testing.T) {
	tests := []struct {
		name     string
		cond     *model.RawCondition
		wantKind model.ConditionKind
		wantNote bool
		check    func(t *testing.T, c model.PassCondition)
	}{
		{
			name:     "equals string",
			cond:     &model.RawCondition{Kind: "equals", Value: "English"},
			wantKind: model.CondEquals,
			check: func(t *testing.T, c model.PassCondition) {
				if c.Value != "English" {
					t.Errorf("Expected 'English', got '%s'", c.Value)
				}
			},
		},
		{
			name:     "equals number",
			cond:     &model.RawCondition{Kind: "equals", Value: float64(14)},
			wantKind: model.CondEquals,
			check: func(t *testing.T, c model.PassCondition) {
				if c.Value != "14" {
					t.Errorf("Expected '14', got '%s'", c.Value)
				}
			},
		},
		{
			name:     "equals empty",
			cond:     &model.RawCondition{Kind: "equals"},
			wantKind: model.CondNotEmpty,
			wantNote: true,
		},
		{
			name:     "matches pattern",
			cond:     &model.RawCondition{Kind: "matches", Value: "^https://"},
			wantKind: model.CondMatches,
		},
		{
			name:     "matches invalid pattern",
			cond:     &model.RawCondition{Kind: "matches", Value: "("},
			wantKind: model.CondNotEmpty,
			wantNote: true,
		},
		{
			name:     "matches no pattern",
			cond:     &model.RawCondition{Kind: "matches"},
			wantKind: model.CondNotEmpty,
			wantNote: true,
		},
		{
			name:     "one_of list",
			cond:     &model.RawCondition{Kind: "one_of", Value: []any{"EUR", "USD"}},
			wantKind: model.CondOneOf,
			check: func(t *testing.T, c model.PassCondition) {
				if len(c.Values) != 2 || c.Values[0] != "EUR" {
					t.Errorf("Unexpected values %v", c.Values)
				}
			},
		},
		{
			name:     "one_of empty",
			cond:     &model.RawCondition{Kind: "one_of", Value: []any{}},
			wantKind: model.CondNotEmpty,
			wantNote: true,
		},
		{
			name:     "min_length number",
			cond:     &model.RawCondition{Kind: "min_length", Value: float64(10)},
			wantKind: model.CondMinLength,
			check: func(t *testing.T, c model.PassCondition) {
				if c.MinLength != 10 {
					t.Errorf("Expected 10, got %d", c.MinLength)
				}
			},
		},
		{
			name:     "min_length string",
			cond:     &model.RawCondition{Kind: "min_length", Value: "12"},
			wantKind: model.CondMinLength,
		},
		{
			name:     "min_length invalid",
			cond:     &model.RawCondition{Kind: "min_length", Value: "lots"},
			wantKind: model.CondNotEmpty,
			wantNote: true,
		},
		{
			name:     "true alias",
			cond:     &model.RawCondition{Kind: "true"},
			wantKind: model.CondBooleanTrue,
		},
		{
			name:     "manual",
			cond:     &model.RawCondition{Kind: "manual"},
			wantKind: model.CondManual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []model.RawRule{{RuleID: "R-1", Section: "S", ExtractionKey: "k", PassCondition: tt.cond}}
			cl, notes, err := Compile("custom", raw)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			got := cl.Rules[0].Condition
			if got.Kind != tt.wantKind {
				t.Errorf("Expected kind '%s', got '%s'", tt.wantKind, got.Kind)
			}
			if tt.wantNote && len(notes) == 0 {
				t.Error("Expected a downgrade note")
			}
			if !tt.wantNote && len(notes) != 0 {
				t.Errorf("Expected no notes, got %v", notes)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestCompileUnknownSeverity(t *testing.T) {
	raw := []model.RawRule{{RuleID: "R-1", Section: "S", ExtractionKey: "k", Severity: "catastrophic"}}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if cl.Rules[0].Severity != model.SeverityFail {
		t.Errorf("Expected fallback to fail, got '%s'", cl.Rules[0].Severity)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "catastrophic") {
		t.Errorf("Expected a note naming the severity, got %v", notes)
	}
}

func TestCompileEmptyChecklist(t *testing.T) {
	_, _, err := Compile("custom", nil)
	var ice *InvalidChecklistError
	if !errors.As(err, &ice) {
		t.Fatalf("Expected InvalidChecklistError, got %v", err)
	}
	if !strings.Contains(ice.Error(), "no rules") {
		t.Errorf("Unexpected message '%s'", ice.Error())
	}
}

func TestCompileMissingSection(t *testing.T) {
	raw := []model.RawRule{{RuleID: "R-1", ExtractionKey: "k"}}
	_, _, err := Compile("custom", raw)
	var ice *InvalidChecklistError
	if !errors.As(err, &ice) {
		t.Fatalf("Expected InvalidChecklistError, got %v", err)
	}
}

func TestCompileDuplicateIDs(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "R-1", Section: "S", ExtractionKey: "a"},
		{RuleID: "R-1", Section: "S", ExtractionKey: "b"},
	}
	_, _, err := Compile("custom", raw)
	var ice *InvalidChecklistError
	if !errors.As(err, &ice) {
		t.Fatalf("Expected InvalidChecklistError, got %v", err)
	}
	if !strings.Contains(ice.Error(), "R-1") {
		t.Errorf("Expected the duplicate id in the message, got '%s'", ice.Error())
	}
}

func TestCompileExplicitSectionWeights(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "A-1", Section: "A", SectionWeight: f(60), ExtractionKey: "a"},
		{RuleID: "B-1", Section: "B", SectionWeight: f(40), ExtractionKey: "b"},
	}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %v", notes)
	}
	if cl.SectionWeights["A"] != 60 || cl.SectionWeights["B"] != 40 {
		t.Errorf("Unexpected weights %v", cl.SectionWeights)
	}
}

func TestCompileMixedSectionWeights(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "A-1", Section: "A", SectionWeight: f(50), ExtractionKey: "a"},
		{RuleID: "B-1", Section: "B", ExtractionKey: "b"},
		{RuleID: "C-1", Section: "C", ExtractionKey: "c"},
	}

	cl, _, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if cl.SectionWeights["A"] != 50 || cl.SectionWeights["B"] != 25 || cl.SectionWeights["C"] != 25 {
		t.Errorf("Expected 50/25/25, got %v", cl.SectionWeights)
	}
}

func TestCompileScalesDriftingSectionWeights(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "A-1", Section: "A", SectionWeight: f(120), ExtractionKey: "a"},
		{RuleID: "B-1", Section: "B", SectionWeight: f(60), ExtractionKey: "b"},
	}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	var total float64
	for _, w := range cl.SectionWeights {
		total += w
	}
	if total < 99.999 || total > 100.001 {
		t.Errorf("Expected weights scaled to 100, got %v (sum %v)", cl.SectionWeights, total)
	}

	found := false
	for _, n := range notes {
		if strings.Contains(n, "scaled") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a scaling note, got %v", notes)
	}
}

func TestCompileZeroWeightSectionNote(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "M-1", Section: "Manual", ExtractionKey: "k", Weight: f(0),
			PassCondition: &model.RawCondition{Kind: "manual"}},
	}

	_, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	found := false
	for _, n := range notes {
		if strings.Contains(n, "no weighted rules") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a zero-weight section note, got %v", notes)
	}
}

func TestCompileNegativeRuleWeight(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "R-1", Section: "S", ExtractionKey: "a", Weight: f(-5)},
		{RuleID: "R-2", Section: "S", ExtractionKey: "b", Weight: f(50)},
	}

	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if cl.Rules[0].Weight != 0 {
		t.Errorf("Expected negative weight clamped to 0, got %v", cl.Rules[0].Weight)
	}
	if len(notes) == 0 {
		t.Error("Expected a note about the negative weight")
	}
}

func TestCompileDefaultRuleWeightSharesSection(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "R-1", Section: "S", ExtractionKey: "a"},
		{RuleID: "R-2", Section: "S", ExtractionKey: "b"},
		{RuleID: "R-3", Section: "S", ExtractionKey: "c", Weight: f(40)},
	}

	cl, _, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := 100.0 / 3.0
	if cl.Rules[0].Weight != want || cl.Rules[1].Weight != want {
		t.Errorf("Expected default weight %v, got %v and %v", want, cl.Rules[0].Weight, cl.Rules[1].Weight)
	}
	if cl.Rules[2].Weight != 40 {
		t.Errorf("Expected explicit weight kept, got %v", cl.Rules[2].Weight)
	}
}

func TestCompileMissingExtractionKeyNote(t *testing.T) {
	raw := []model.RawRule{{RuleID: "R-1", Section: "S"}}

	_, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "extraction key") {
		t.Errorf("Expected an extraction key note, got %v", notes)
	}
}
