package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askar0007amirkhanov/ai-precheck/config"
	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Extractor turns crawled site text into compliance facts and uploaded
// checklist text into raw rule definitions. The evaluation engine never
// talks to an Extractor; handlers run it before evaluation.
type Extractor interface {
	ExtractFacts(ctx context.Context, text string) (model.FactStore, error)
	ParseChecklist(ctx context.Context, text string) ([]model.RawRule, error)
}

// NewExtractor selects an implementation by provider name.
func NewExtractor(cfg *config.LLMConfig) (Extractor, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIExtractor(cfg), nil
	case "mock":
		return NewMockExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

const factsSystemPrompt = "You are a precise data extraction assistant. " +
	"Extract regulatory compliance details from the website text. " +
	"Respond with a single JSON object. Use the string \"Not found\" for text fields " +
	"you cannot locate and false for boolean fields you cannot confirm."

const factsUserPromptHeader = `Extract the following fields from the website text below:
company_name, registration_number, legal_address, vat_number, merchant_outlet_location,
has_license_info, license_number, regulator_link,
support_email, phone_number, physical_address, has_contact_page,
has_terms_conditions, has_privacy_policy, has_refund_policy, has_cancellation_policy,
has_payment_policy, policies_accessible_from_all_pages, policy_mentions_service_conditions,
policy_mentions_cancellation_terms, policy_mentions_refund_terms, refund_period_days,
policy_mentions_user_restrictions, policy_mentions_company_name, site_primary_language,
has_product_description, prices_in_purchase_currency, all_fees_disclosed,
transparent_purchase_process, shows_final_price, shows_merchant_location_at_checkout,
has_terms_agreement_checkbox, has_receipt_info, receipt_details,
update_notification_process, update_notification_channel,
has_mobile_responsive, viewport_meta, payment_methods_mentioned.

WEBSITE TEXT:
`

const checklistSystemPrompt = "You are a compliance expert. " +
	"Convert checklist documents into structured JSON rules. Respond with a single JSON object."

const checklistUserPromptHeader = `Convert this checklist document into JSON: {"rules": [...]}.
For each rule define:
- rule_id: a unique code (e.g. SEC-01)
- section: the section it belongs to (e.g. "Company Info")
- item: short name (e.g. "Privacy Policy link")
- description: full requirement details from the text
- extraction_key: a snake_case field name an extraction agent fills for this rule
- pass_condition: one of "not_empty", "equals", "matches", "one_of", "min_length", "boolean_true", "manual"
- severity: "fail" (critical), "warning" (minor) or "info"

DOCUMENT CONTENT:
`

// Truncation bound for prompt text, matching the crawl content cap.
const maxPromptChars = 30000

// OpenAIExtractor calls an OpenAI-compatible chat completions endpoint.
type OpenAIExtractor struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Extractor = (*OpenAIExtractor)(nil)

func NewOpenAIExtractor(cfg *config.LLMConfig) *OpenAIExtractor {
	return &OpenAIExtractor{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (e *OpenAIExtractor) ExtractFacts(ctx context.Context, text string) (model.FactStore, error) {
	content, err := e.complete(ctx, factsSystemPrompt, factsUserPromptHeader+truncate(text))
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	var facts model.FactStore
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &facts); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return facts, nil
}

func (e *OpenAIExtractor) ParseChecklist(ctx context.Context, text string) ([]model.RawRule, error) {
	content, err := e.complete(ctx, checklistSystemPrompt, checklistUserPromptHeader+truncate(text))
	if err != nil {
		return nil, fmt.Errorf("parse checklist: %w", err)
	}

	var parsed struct {
		Rules []model.RawRule `json:"rules"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return nil, fmt.Errorf("parse checklist response: %w", err)
	}
	return parsed.Rules, nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *OpenAIExtractor) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if e.apiKey == "" || e.endpoint == "" || e.model == "" {
		return "", fmt.Errorf("llm client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(text string) string {
	if len(text) > maxPromptChars {
		return text[:maxPromptChars]
	}
	return text
}

// stripCodeFence unwraps ```json ... ``` fenced responses some models
// produce despite the json_object response format.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
