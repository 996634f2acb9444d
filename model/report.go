package model

import (
	"time"
)

// VerdictStatus is the per-rule outcome.
type VerdictStatus string

const (
	VerdictPass         VerdictStatus = "pass"
	VerdictFail         VerdictStatus = "fail"
	VerdictWarning      VerdictStatus = "warning"
	VerdictManualReview VerdictStatus = "manual_review"
)

// ComplianceStatus is the overall report outcome.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusNeedsReview  ComplianceStatus = "NEEDS_REVIEW"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

// Verdict is the outcome of evaluating one rule against the fact store.
type Verdict struct {
	RuleID         string        `json:"rule_id"`
	Section        string        `json:"section"`
	Item           string        `json:"item"`
	Status         VerdictStatus `json:"status"`
	FoundValue     string        `json:"found_value"`
	Recommendation string        `json:"recommendation,omitempty"`
}

// SectionResult aggregates the verdicts of one checklist section.
// Score is in [0, Weight].
type SectionResult struct {
	Name   string    `json:"section_name"`
	Score  float64   `json:"section_score"`
	Weight float64   `json:"section_weight"`
	Items  []Verdict `json:"items"`
}

// ComplianceReport is the result of one full checklist evaluation.
type ComplianceReport struct {
	ReportID     string           `json:"report_id"`
	CompanyName  string           `json:"company_name"`
	SiteURL      string           `json:"site_url,omitempty"`
	OverallScore int              `json:"overall_score"`
	Status       ComplianceStatus `json:"status"`
	Sections     []SectionResult  `json:"sections"`
	Summary      string           `json:"summary"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// ReportRecord is a stored evaluation with its request context.
type ReportRecord struct {
	ID          string           `json:"id"`
	ClientID    string           `json:"client_id"`
	SiteURL     string           `json:"site_url"`
	CompanyName string           `json:"company_name"`
	Score       int              `json:"score"`
	Status      ComplianceStatus `json:"status"`
	Report      ComplianceReport `json:"report"`
	CreatedAt   time.Time        `json:"created_at"`
}
