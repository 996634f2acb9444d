package compliance

import (
	"strings"
	"testing"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

func weightedRule(id string, weight float64, severity model.Severity) model.Rule {
	return model.Rule{
		ID:       id,
		Section:  "S",
		Item:     id,
		Severity: severity,
		Weight:   weight,
	}
}

func verdict(id string, status model.VerdictStatus) model.Verdict {
	return model.Verdict{RuleID: id, Section: "S", Item: id, Status: status}
}

func TestAggregateSectionAllPass(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 50, model.SeverityFail), weightedRule("B", 50, model.SeverityFail)}
	verdicts := []model.Verdict{verdict("A", model.VerdictPass), verdict("B", model.VerdictPass)}

	res := AggregateSection("S", rules, verdicts, 20)
	if res.Score != 20 {
		t.Errorf("Expected full weight 20, got %v", res.Score)
	}
}

func TestAggregateSectionAllFail(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 50, model.SeverityFail), weightedRule("B", 50, model.SeverityFail)}
	verdicts := []model.Verdict{verdict("A", model.VerdictFail), verdict("B", model.VerdictFail)}

	res := AggregateSection("S", rules, verdicts, 20)
	if res.Score != 0 {
		t.Errorf("Expected 0, got %v", res.Score)
	}
}

func TestAggregateSectionPartialCredit(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 50, model.SeverityFail), weightedRule("B", 50, model.SeverityWarning)}
	verdicts := []model.Verdict{verdict("A", model.VerdictPass), verdict("B", model.VerdictWarning)}

	res := AggregateSection("S", rules, verdicts, 20)
	if res.Score != 15 {
		t.Errorf("Expected 15 (full plus half credit), got %v", res.Score)
	}
}

func TestAggregateSectionManualCredit(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 100, model.SeverityInfo)}
	verdicts := []model.Verdict{verdict("A", model.VerdictManualReview)}

	res := AggregateSection("S", rules, verdicts, 10)
	if res.Score != 5 {
		t.Errorf("Expected half credit 5, got %v", res.Score)
	}
}

func TestAggregateSectionInfoFailureKeepsCredit(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 50, model.SeverityFail), weightedRule("B", 50, model.SeverityInfo)}
	verdicts := []model.Verdict{verdict("A", model.VerdictPass), verdict("B", model.VerdictWarning)}

	res := AggregateSection("S", rules, verdicts, 20)
	if res.Score != 20 {
		t.Errorf("Expected info warning to keep full credit, got %v", res.Score)
	}
}

func TestAggregateSectionZeroWeightScoresFull(t *testing.T) {
	rules := []model.Rule{weightedRule("A", 0, model.SeverityInfo), weightedRule("B", 0, model.SeverityInfo)}
	verdicts := []model.Verdict{verdict("A", model.VerdictManualReview), verdict("B", model.VerdictFail)}

	res := AggregateSection("S", rules, verdicts, 5)
	if res.Score != 5 {
		t.Errorf("Expected unweighted section to score its full weight, got %v", res.Score)
	}
}

func TestAggregateSectionBounds(t *testing.T) {
	statuses := []model.VerdictStatus{model.VerdictPass, model.VerdictFail, model.VerdictWarning, model.VerdictManualReview}
	severities := []model.Severity{model.SeverityFail, model.SeverityWarning, model.SeverityInfo}

	for _, s1 := range statuses {
		for _, s2 := range statuses {
			for _, sev := range severities {
				rules := []model.Rule{weightedRule("A", 30, sev), weightedRule("B", 70, model.SeverityFail)}
				verdicts := []model.Verdict{verdict("A", s1), verdict("B", s2)}
				res := AggregateSection("S", rules, verdicts, 25)
				if res.Score < 0 || res.Score > res.Weight {
					t.Fatalf("Score %v out of [0, %v] for statuses %s/%s severity %s", res.Score, res.Weight, s1, s2, sev)
				}
			}
		}
	}
}

func TestOverallScoreRoundsAndClamps(t *testing.T) {
	sections := []model.SectionResult{
		{Score: 49.6, Weight: 50},
		{Score: 30.0, Weight: 50},
	}
	if got := OverallScore(sections); got != 80 {
		t.Errorf("Expected 80, got %d", got)
	}

	if got := OverallScore([]model.SectionResult{{Score: 100.6, Weight: 100}}); got != 100 {
		t.Errorf("Expected clamp to 100, got %d", got)
	}
	if got := OverallScore(nil); got != 0 {
		t.Errorf("Expected 0 for no sections, got %d", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.ComplianceStatus
	}{
		{100, model.StatusCompliant},
		{80, model.StatusCompliant},
		{79, model.StatusNeedsReview},
		{50, model.StatusNeedsReview},
		{49, model.StatusNonCompliant},
		{0, model.StatusNonCompliant},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.score); got != tt.want {
			t.Errorf("Score %d: expected '%s', got '%s'", tt.score, tt.want, got)
		}
	}
}

func TestSummarizeAllHealthy(t *testing.T) {
	sections := []model.SectionResult{
		{Name: "A", Score: 18, Weight: 20},
		{Name: "B", Score: 8, Weight: 10},
	}
	got := Summarize(sections)
	if !strings.Contains(got, "All checklist sections") {
		t.Errorf("Expected the healthy summary, got '%s'", got)
	}
}

func TestSummarizeNamesWorstThree(t *testing.T) {
	sections := []model.SectionResult{
		{Name: "A", Score: 10, Weight: 20}, // 50%
		{Name: "B", Score: 2, Weight: 20},  // 10%
		{Name: "C", Score: 4, Weight: 20},  // 20%
		{Name: "D", Score: 8, Weight: 20},  // 40%
		{Name: "E", Score: 20, Weight: 20}, // healthy
	}
	got := Summarize(sections)

	for _, name := range []string{"B (10%)", "C (20%)", "D (40%)"} {
		if !strings.Contains(got, name) {
			t.Errorf("Expected summary to contain '%s', got '%s'", name, got)
		}
	}
	if strings.Contains(got, "A (") || strings.Contains(got, "E") {
		t.Errorf("Expected only the three weakest sections, got '%s'", got)
	}
	if bIdx, cIdx := strings.Index(got, "B ("), strings.Index(got, "C ("); bIdx > cIdx {
		t.Errorf("Expected worst-first ordering, got '%s'", got)
	}
}

func TestSummarizeTiesKeepChecklistOrder(t *testing.T) {
	sections := []model.SectionResult{
		{Name: "First", Score: 5, Weight: 50},
		{Name: "Second", Score: 5, Weight: 50},
	}
	got := Summarize(sections)
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Errorf("Expected stable order on ties, got '%s'", got)
	}
}

func TestSummarizePercentRounding(t *testing.T) {
	sections := []model.SectionResult{{Name: "A", Score: 1, Weight: 3}}
	got := Summarize(sections)
	if !strings.Contains(got, "A (33%)") {
		t.Errorf("Expected 'A (33%%)' in summary, got '%s'", got)
	}
}
