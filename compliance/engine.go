package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Engine evaluates checklists against extracted fact stores. The zero
// value is usable; Now can be overridden for deterministic timestamps.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs every checklist rule against the fact store and builds the
// scored report. The report id is derived from the report content, so the
// same checklist and facts always produce the same id.
func (e *Engine) Evaluate(checklist *model.Checklist, facts model.FactStore) model.ComplianceReport {
	sections := make([]model.SectionResult, 0, len(checklist.SectionOrder))
	for _, name := range checklist.SectionOrder {
		rules := checklist.SectionRules(name)
		verdicts := make([]model.Verdict, 0, len(rules))
		for _, rule := range rules {
			verdicts = append(verdicts, EvaluateRule(rule, facts))
		}
		sections = append(sections, AggregateSection(name, rules, verdicts, checklist.SectionWeights[name]))
	}

	score := OverallScore(sections)

	company := facts.StringValue("company_name")
	if model.IsMissing(company) {
		company = "Unknown"
	}
	siteURL := facts.StringValue("site_url")
	if model.IsMissing(siteURL) {
		siteURL = ""
	}

	report := model.ComplianceReport{
		CompanyName:  company,
		SiteURL:      siteURL,
		OverallScore: score,
		Status:       StatusFor(score),
		Sections:     sections,
		Summary:      Summarize(sections),
		GeneratedAt:  e.now().UTC(),
	}
	report.ReportID = reportID(report)
	return report
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func reportID(r model.ComplianceReport) string {
	payload := struct {
		Company  string                `json:"company"`
		SiteURL  string                `json:"site_url"`
		Score    int                   `json:"score"`
		Sections []model.SectionResult `json:"sections"`
	}{r.CompanyName, r.SiteURL, r.OverallScore, r.Sections}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return "rpt_" + hex.EncodeToString(sum[:])[:12]
}
