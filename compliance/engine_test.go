package compliance

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Sample values satisfying the two regex rules of the built-in checklist.
var matchingSamples = map[string]string{
	"support_email":      "support@acme.example",
	"refund_period_days": "30",
}

// passingFacts builds a fact store under which every automated rule of the
// checklist passes.
func passingFacts(cl *model.Checklist) model.FactStore {
	facts := model.FactStore{}
	for _, r := range cl.Rules {
		if r.ExtractionKey == "" {
			continue
		}
		switch r.Condition.Kind {
		case model.CondNotEmpty:
			facts[r.ExtractionKey] = "stated on the site"
		case model.CondBooleanTrue:
			facts[r.ExtractionKey] = true
		case model.CondEquals:
			facts[r.ExtractionKey] = r.Condition.Value
		case model.CondOneOf:
			facts[r.ExtractionKey] = r.Condition.Values[0]
		case model.CondMinLength:
			facts[r.ExtractionKey] = strings.Repeat("x", r.Condition.MinLength)
		case model.CondMatches:
			facts[r.ExtractionKey] = matchingSamples[r.ExtractionKey]
		}
	}
	facts["company_name"] = "Acme Ltd"
	facts["site_url"] = "https://acme.example"
	return facts
}

func fixedEngine() *Engine {
	return &Engine{Now: func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}}
}

func TestEvaluateBuiltInAllFactsPresent(t *testing.T) {
	cl := BuiltIn()
	report := fixedEngine().Evaluate(cl, passingFacts(cl))

	if report.OverallScore != 100 {
		t.Errorf("Expected score 100, got %d", report.OverallScore)
	}
	if report.Status != model.StatusCompliant {
		t.Errorf("Expected COMPLIANT, got '%s'", report.Status)
	}
	if !strings.Contains(report.Summary, "All checklist sections") {
		t.Errorf("Unexpected summary '%s'", report.Summary)
	}
	if len(report.Sections) != len(cl.SectionOrder) {
		t.Fatalf("Expected %d sections, got %d", len(cl.SectionOrder), len(report.Sections))
	}
	for _, s := range report.Sections {
		if s.Score != s.Weight {
			t.Errorf("Section '%s': expected full score %v, got %v", s.Name, s.Weight, s.Score)
		}
	}
	if report.CompanyName != "Acme Ltd" {
		t.Errorf("Expected company from facts, got '%s'", report.CompanyName)
	}
}

func TestEvaluateBuiltInEmptyFacts(t *testing.T) {
	cl := BuiltIn()
	report := fixedEngine().Evaluate(cl, model.FactStore{})

	if report.Status != model.StatusNonCompliant {
		t.Errorf("Expected NON_COMPLIANT, got '%s' (score %d)", report.Status, report.OverallScore)
	}
	if report.OverallScore >= 50 {
		t.Errorf("Expected score below 50, got %d", report.OverallScore)
	}
	if report.CompanyName != "Unknown" {
		t.Errorf("Expected company fallback 'Unknown', got '%s'", report.CompanyName)
	}

	for _, s := range report.Sections {
		for _, item := range s.Items {
			if item.Status == model.VerdictPass {
				t.Errorf("Rule %s: expected no passes with an empty store", item.RuleID)
			}
		}
	}

	// The two manual sections carry no weighted rules and stay at full
	// weight even with nothing extracted.
	for _, s := range report.Sections {
		if s.Name == "6. Receipt Information" || s.Name == "7. Update Notifications" {
			if s.Score != s.Weight {
				t.Errorf("Section '%s': expected full weight %v, got %v", s.Name, s.Weight, s.Score)
			}
		}
	}
}

func TestEvaluateManualRulesAlwaysManualReview(t *testing.T) {
	cl := BuiltIn()
	report := fixedEngine().Evaluate(cl, passingFacts(cl))

	var manual int
	for _, s := range report.Sections {
		for _, item := range s.Items {
			if strings.HasPrefix(item.RuleID, "RCP-") || strings.HasPrefix(item.RuleID, "UPD-") {
				manual++
				if item.Status != model.VerdictManualReview {
					t.Errorf("Rule %s: expected manual_review, got '%s'", item.RuleID, item.Status)
				}
			}
		}
	}
	if manual != 4 {
		t.Errorf("Expected 4 manual rules, got %d", manual)
	}
}

func TestEvaluateCustomHTTPSRule(t *testing.T) {
	raw := []model.RawRule{
		{
			RuleID:        "SEC-01",
			Section:       "Security",
			Item:          "HTTPS",
			ExtractionKey: "site_url",
			PassCondition: &model.RawCondition{Kind: "matches", Value: "^https://"},
			Severity:      "fail",
		},
	}
	cl, _, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	report := fixedEngine().Evaluate(cl, model.FactStore{"site_url": "https://shop.example"})
	if report.Sections[0].Items[0].Status != model.VerdictPass {
		t.Errorf("Expected pass, got '%s'", report.Sections[0].Items[0].Status)
	}
	if report.OverallScore != 100 {
		t.Errorf("Expected 100, got %d", report.OverallScore)
	}

	report = fixedEngine().Evaluate(cl, model.FactStore{"site_url": "http://shop.example"})
	if report.Sections[0].Items[0].Status != model.VerdictFail {
		t.Errorf("Expected fail for plain http, got '%s'", report.Sections[0].Items[0].Status)
	}
}

func TestEvaluateDowngradedConditionBehavesAsNotEmpty(t *testing.T) {
	raw := []model.RawRule{
		{
			RuleID:        "AI-01",
			Section:       "Content",
			Item:          "Tone of voice",
			ExtractionKey: "tone",
			PassCondition: &model.RawCondition{Kind: "fuzzy_llm_check"},
			Severity:      "warning",
		},
	}
	cl, notes, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected one downgrade note, got %v", notes)
	}

	report := fixedEngine().Evaluate(cl, model.FactStore{})
	if got := report.Sections[0].Items[0].Status; got != model.VerdictWarning {
		t.Errorf("Expected warning (missing value, warning severity), got '%s'", got)
	}

	report = fixedEngine().Evaluate(cl, model.FactStore{"tone": "friendly"})
	if got := report.Sections[0].Items[0].Status; got != model.VerdictPass {
		t.Errorf("Expected pass once the value exists, got '%s'", got)
	}
}

func TestEvaluateWeightedSections(t *testing.T) {
	raw := []model.RawRule{
		{RuleID: "A-1", Section: "A", SectionWeight: f(60), Weight: f(50), ExtractionKey: "a1"},
		{RuleID: "A-2", Section: "A", Weight: f(50), ExtractionKey: "a2"},
		{RuleID: "B-1", Section: "B", SectionWeight: f(40), Weight: f(100), ExtractionKey: "b1"},
	}
	cl, _, err := Compile("custom", raw)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	report := fixedEngine().Evaluate(cl, model.FactStore{"a1": "present", "b1": "present"})

	if report.Sections[0].Score != 30 {
		t.Errorf("Expected section A score 30, got %v", report.Sections[0].Score)
	}
	if report.Sections[1].Score != 40 {
		t.Errorf("Expected section B score 40, got %v", report.Sections[1].Score)
	}
	if report.OverallScore != 70 {
		t.Errorf("Expected overall 70, got %d", report.OverallScore)
	}
	if report.Status != model.StatusNeedsReview {
		t.Errorf("Expected NEEDS_REVIEW, got '%s'", report.Status)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	cl := BuiltIn()
	facts := model.FactStore{
		"company_name":       "Acme Ltd",
		"site_url":           "https://acme.example",
		"has_privacy_policy": true,
	}

	engine := fixedEngine()
	first := engine.Evaluate(cl, facts)
	second := engine.Evaluate(cl, facts)

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Error("Expected bit-identical reports for identical inputs")
	}
	if first.ReportID != second.ReportID {
		t.Errorf("Expected stable report id, got '%s' and '%s'", first.ReportID, second.ReportID)
	}
}

func TestEvaluateReportIDFormat(t *testing.T) {
	cl := BuiltIn()
	report := fixedEngine().Evaluate(cl, model.FactStore{})

	if !strings.HasPrefix(report.ReportID, "rpt_") {
		t.Errorf("Expected 'rpt_' prefix, got '%s'", report.ReportID)
	}
	if len(report.ReportID) != len("rpt_")+12 {
		t.Errorf("Expected 12 hex chars after the prefix, got '%s'", report.ReportID)
	}

	other := fixedEngine().Evaluate(cl, model.FactStore{"company_name": "Acme Ltd"})
	if other.ReportID == report.ReportID {
		t.Error("Expected different facts to produce a different report id")
	}
}

func TestEvaluateMonotonicity(t *testing.T) {
	cl := BuiltIn()
	facts := model.FactStore{}
	engine := fixedEngine()

	previous := engine.Evaluate(cl, facts).OverallScore
	fixes := []struct {
		key   string
		value any
	}{
		{"company_name", "Acme Ltd"},
		{"registration_number", "HRB 123456"},
		{"legal_address", "12 Long Street, 10115 Berlin, Germany"},
		{"has_contact_page", true},
		{"support_email", "support@acme.example"},
		{"has_privacy_policy", true},
		{"has_terms_conditions", true},
		{"shows_final_price", true},
	}
	for _, fix := range fixes {
		facts[fix.key] = fix.value
		score := engine.Evaluate(cl, facts).OverallScore
		if score < previous {
			t.Fatalf("Score decreased from %d to %d after fixing %s", previous, score, fix.key)
		}
		previous = score
	}
}

func TestEvaluateGeneratedAtUsesClock(t *testing.T) {
	stamp := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	engine := &Engine{Now: func() time.Time { return stamp }}

	report := engine.Evaluate(BuiltIn(), model.FactStore{})
	if !report.GeneratedAt.Equal(stamp) {
		t.Errorf("Expected %v, got %v", stamp, report.GeneratedAt)
	}
}

func TestNewEngineUsesWallClock(t *testing.T) {
	before := time.Now().UTC()
	report := NewEngine().Evaluate(BuiltIn(), model.FactStore{})
	after := time.Now().UTC()

	if report.GeneratedAt.Before(before) || report.GeneratedAt.After(after) {
		t.Errorf("Expected generated_at within [%v, %v], got %v", before, after, report.GeneratedAt)
	}
}
