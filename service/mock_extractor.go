package service

import (
	"context"
	"log/slog"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// MockExtractor returns deterministic demo data without calling any
// external API. Activate via llm.provider: mock (the default).
type MockExtractor struct{}

var _ Extractor = (*MockExtractor)(nil)

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

func (m *MockExtractor) ExtractFacts(_ context.Context, _ string) (model.FactStore, error) {
	slog.Info("mock extractor: returning demo extraction data")
	return model.FactStore{
		"company_name":                 "Demo Company",
		"registration_number":          "12345678",
		"legal_address":                "1 Demo Street, Demo City, DC1 2AB",
		"support_email":                "support@demo.example",
		"has_contact_page":             true,
		"has_privacy_policy":           true,
		"has_terms_conditions":         false,
		"has_refund_policy":            true,
		"refund_period_days":           14,
		"policy_mentions_refund_terms": true,
		"has_product_description":      true,
		"shows_final_price":            true,
		"has_mobile_responsive":        true,
		"viewport_meta":                "width=device-width, initial-scale=1",
		"payment_methods_mentioned":    []string{"Visa", "MasterCard"},
	}, nil
}

func (m *MockExtractor) ParseChecklist(_ context.Context, _ string) ([]model.RawRule, error) {
	slog.Info("mock extractor: returning demo checklist rules")
	return []model.RawRule{
		{
			RuleID:        "MOCK-001",
			Section:       "Mock Section",
			Item:          "Mock Rule 1",
			Description:   "This is a mock rule from the parser.",
			ExtractionKey: "mock_value",
			PassCondition: &model.RawCondition{Kind: "not_empty"},
			Severity:      "fail",
		},
	}, nil
}
