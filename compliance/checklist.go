package compliance

import (
	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// BuiltInChecklistName identifies the default merchant checklist.
const BuiltInChecklistName = "Merchant Website Compliance Checklist"

var (
	condNotEmpty    = model.PassCondition{Kind: model.CondNotEmpty}
	condBooleanTrue = model.PassCondition{Kind: model.CondBooleanTrue}
	condManual      = model.PassCondition{Kind: model.CondManual}
)

// Built-in section order and score shares. The shares sum to 100.
var builtinSections = []struct {
	Name   string
	Weight float64
}{
	{"1. Company Information", 20},
	{"2. Contacts", 10},
	{"3. Policies", 25},
	{"4. Product & Service Description", 10},
	{"5. Checkout", 15},
	{"6. Receipt Information", 5},
	{"7. Update Notifications", 5},
	{"8. Mobile Compliance", 10},
}

// Built-in merchant website rules. Rule weights are shares within their
// section and sum to 100 per section; manual rules carry no weight, so the
// two manual sections never reduce the score.
var builtinRules = []model.Rule{
	// 1. Company Information
	{
		ID:            "CMP-001",
		Section:       "1. Company Information",
		Item:          "Legal company name",
		Description:   "The registered legal name of the company must be stated on the site.",
		ExtractionKey: "company_name",
		Condition:     condNotEmpty,
		Severity:      model.SeverityFail,
		Weight:        25,
	},
	{
		ID:            "CMP-002",
		Section:       "1. Company Information",
		Item:          "Registration number",
		Description:   "State the company registration or incorporation number.",
		ExtractionKey: "registration_number",
		Condition:     condNotEmpty,
		Severity:      model.SeverityFail,
		Weight:        20,
	},
	{
		ID:            "CMP-003",
		Section:       "1. Company Information",
		Item:          "Legal address",
		Description:   "Publish the full registered address, not just a city or country.",
		ExtractionKey: "legal_address",
		Condition:     model.PassCondition{Kind: model.CondMinLength, MinLength: 10},
		Severity:      model.SeverityFail,
		Weight:        15,
	},
	{
		ID:            "CMP-004",
		Section:       "1. Company Information",
		Item:          "VAT number",
		Description:   "Show the VAT or tax identification number where applicable.",
		ExtractionKey: "vat_number",
		Condition:     condNotEmpty,
		Severity:      model.SeverityWarning,
		Weight:        15,
	},
	{
		ID:            "CMP-005",
		Section:       "1. Company Information",
		Item:          "Merchant outlet location",
		Description:   "Disclose the merchant outlet country so cardholders know who they are dealing with.",
		ExtractionKey: "merchant_outlet_location",
		Condition:     condNotEmpty,
		Severity:      model.SeverityWarning,
		Weight:        10,
	},
	{
		ID:            "CMP-006",
		Section:       "1. Company Information",
		Item:          "Licensing information",
		Description:   "Regulated businesses should mention their licensing status.",
		ExtractionKey: "has_license_info",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityInfo,
		Weight:        5,
	},
	{
		ID:            "CMP-007",
		Section:       "1. Company Information",
		Item:          "License number",
		Description:   "Publish the license number when the business is licensed.",
		ExtractionKey: "license_number",
		Condition:     condNotEmpty,
		Severity:      model.SeverityInfo,
		Weight:        5,
	},
	{
		ID:            "CMP-008",
		Section:       "1. Company Information",
		Item:          "Regulator link",
		Description:   "Link to the supervising regulator when the business is licensed.",
		ExtractionKey: "regulator_link",
		Condition:     condNotEmpty,
		Severity:      model.SeverityInfo,
		Weight:        5,
	},

	// 2. Contacts
	{
		ID:            "CTC-001",
		Section:       "2. Contacts",
		Item:          "Support email",
		Description:   "A working customer support email address must be published.",
		ExtractionKey: "support_email",
		Condition:     model.PassCondition{Kind: model.CondMatches, Value: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`},
		Severity:      model.SeverityFail,
		Weight:        30,
	},
	{
		ID:            "CTC-002",
		Section:       "2. Contacts",
		Item:          "Phone number",
		Description:   "A customer support phone number should be published.",
		ExtractionKey: "phone_number",
		Condition:     condNotEmpty,
		Severity:      model.SeverityWarning,
		Weight:        20,
	},
	{
		ID:            "CTC-003",
		Section:       "2. Contacts",
		Item:          "Physical address",
		Description:   "A physical contact address should be published.",
		ExtractionKey: "physical_address",
		Condition:     condNotEmpty,
		Severity:      model.SeverityWarning,
		Weight:        20,
	},
	{
		ID:            "CTC-004",
		Section:       "2. Contacts",
		Item:          "Contact page",
		Description:   "The site must have a reachable contact page.",
		ExtractionKey: "has_contact_page",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        30,
	},

	// 3. Policies
	{
		ID:            "POL-001",
		Section:       "3. Policies",
		Item:          "Terms and conditions",
		Description:   "Publish the terms and conditions of sale.",
		ExtractionKey: "has_terms_conditions",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        12,
	},
	{
		ID:            "POL-002",
		Section:       "3. Policies",
		Item:          "Privacy policy",
		Description:   "Publish a privacy policy covering personal data handling.",
		ExtractionKey: "has_privacy_policy",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        12,
	},
	{
		ID:            "POL-003",
		Section:       "3. Policies",
		Item:          "Refund policy",
		Description:   "Publish a refund policy.",
		ExtractionKey: "has_refund_policy",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        12,
	},
	{
		ID:            "POL-004",
		Section:       "3. Policies",
		Item:          "Cancellation policy",
		Description:   "Publish a cancellation policy.",
		ExtractionKey: "has_cancellation_policy",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        8,
	},
	{
		ID:            "POL-005",
		Section:       "3. Policies",
		Item:          "Payment policy",
		Description:   "Describe accepted payment methods and billing terms.",
		ExtractionKey: "has_payment_policy",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        8,
	},
	{
		ID:            "POL-006",
		Section:       "3. Policies",
		Item:          "Policies reachable from all pages",
		Description:   "Link the legal policies from every page, typically in the footer.",
		ExtractionKey: "policies_accessible_from_all_pages",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        8,
	},
	{
		ID:            "POL-007",
		Section:       "3. Policies",
		Item:          "Service conditions described",
		Description:   "The terms must describe the conditions of the offered service.",
		ExtractionKey: "policy_mentions_service_conditions",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        7,
	},
	{
		ID:            "POL-008",
		Section:       "3. Policies",
		Item:          "Cancellation terms described",
		Description:   "The policies must spell out how a purchase is cancelled.",
		ExtractionKey: "policy_mentions_cancellation_terms",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        7,
	},
	{
		ID:            "POL-009",
		Section:       "3. Policies",
		Item:          "Refund terms described",
		Description:   "The policies must spell out how refunds are handled.",
		ExtractionKey: "policy_mentions_refund_terms",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        10,
	},
	{
		ID:            "POL-010",
		Section:       "3. Policies",
		Item:          "Refund period",
		Description:   "Offer a refund period of at least 14 days.",
		ExtractionKey: "refund_period_days",
		Condition:     model.PassCondition{Kind: model.CondMatches, Value: `(1[4-9]|[2-9][0-9]|[1-9][0-9]{2,})`},
		Severity:      model.SeverityWarning,
		Weight:        6,
	},
	{
		ID:            "POL-011",
		Section:       "3. Policies",
		Item:          "User restrictions disclosed",
		Description:   "Disclose restrictions such as age limits or excluded countries.",
		ExtractionKey: "policy_mentions_user_restrictions",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityInfo,
		Weight:        4,
	},
	{
		ID:            "POL-012",
		Section:       "3. Policies",
		Item:          "Company named in policies",
		Description:   "The policies must name the legal entity the customer contracts with.",
		ExtractionKey: "policy_mentions_company_name",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        4,
	},
	{
		ID:            "POL-013",
		Section:       "3. Policies",
		Item:          "Site language identified",
		Description:   "The primary language of the site should be identifiable.",
		ExtractionKey: "site_primary_language",
		Condition:     condNotEmpty,
		Severity:      model.SeverityInfo,
		Weight:        2,
	},

	// 4. Product & Service Description
	{
		ID:            "PRD-001",
		Section:       "4. Product & Service Description",
		Item:          "Product descriptions",
		Description:   "Describe the offered products or services in enough detail to know what is sold.",
		ExtractionKey: "has_product_description",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        30,
	},
	{
		ID:            "PRD-002",
		Section:       "4. Product & Service Description",
		Item:          "Prices in purchase currency",
		Description:   "Show prices in the currency the cardholder will be charged in.",
		ExtractionKey: "prices_in_purchase_currency",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        25,
	},
	{
		ID:            "PRD-003",
		Section:       "4. Product & Service Description",
		Item:          "Fees disclosed",
		Description:   "Disclose all fees, taxes and surcharges before purchase.",
		ExtractionKey: "all_fees_disclosed",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        25,
	},
	{
		ID:            "PRD-004",
		Section:       "4. Product & Service Description",
		Item:          "Transparent purchase process",
		Description:   "The purchase flow must make clear what is bought and on what terms.",
		ExtractionKey: "transparent_purchase_process",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        20,
	},

	// 5. Checkout
	{
		ID:            "CHK-001",
		Section:       "5. Checkout",
		Item:          "Final price before payment",
		Description:   "Show the final total, including all charges, before the payment step.",
		ExtractionKey: "shows_final_price",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        30,
	},
	{
		ID:            "CHK-002",
		Section:       "5. Checkout",
		Item:          "Merchant location at checkout",
		Description:   "Show the merchant outlet location during checkout.",
		ExtractionKey: "shows_merchant_location_at_checkout",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        25,
	},
	{
		ID:            "CHK-003",
		Section:       "5. Checkout",
		Item:          "Terms agreement checkbox",
		Description:   "Require explicit agreement to the terms before completing a purchase.",
		ExtractionKey: "has_terms_agreement_checkbox",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityFail,
		Weight:        30,
	},
	{
		ID:            "CHK-004",
		Section:       "5. Checkout",
		Item:          "Payment methods disclosed",
		Description:   "List the accepted payment methods.",
		ExtractionKey: "payment_methods_mentioned",
		Condition:     condNotEmpty,
		Severity:      model.SeverityWarning,
		Weight:        15,
	},

	// 6. Receipt Information (not verifiable from a crawl)
	{
		ID:            "RCP-001",
		Section:       "6. Receipt Information",
		Item:          "Receipt sent after purchase",
		Description:   "A receipt must be delivered to the customer after every purchase.",
		ExtractionKey: "has_receipt_info",
		Condition:     condManual,
		Severity:      model.SeverityInfo,
	},
	{
		ID:            "RCP-002",
		Section:       "6. Receipt Information",
		Item:          "Receipt content",
		Description:   "Receipts must carry the merchant name, amount and transaction details.",
		ExtractionKey: "receipt_details",
		Condition:     condManual,
		Severity:      model.SeverityInfo,
	},

	// 7. Update Notifications (not verifiable from a crawl)
	{
		ID:            "UPD-001",
		Section:       "7. Update Notifications",
		Item:          "Policy change notifications",
		Description:   "Customers must be notified when legal policies change.",
		ExtractionKey: "update_notification_process",
		Condition:     condManual,
		Severity:      model.SeverityInfo,
	},
	{
		ID:            "UPD-002",
		Section:       "7. Update Notifications",
		Item:          "Notification channel",
		Description:   "The channel used for change notifications must be documented.",
		ExtractionKey: "update_notification_channel",
		Condition:     condManual,
		Severity:      model.SeverityInfo,
	},

	// 8. Mobile Compliance
	{
		ID:            "MOB-001",
		Section:       "8. Mobile Compliance",
		Item:          "Mobile friendly design",
		Description:   "The site must stay usable on mobile devices.",
		ExtractionKey: "has_mobile_responsive",
		Condition:     condBooleanTrue,
		Severity:      model.SeverityWarning,
		Weight:        70,
	},
	{
		ID:            "MOB-002",
		Section:       "8. Mobile Compliance",
		Item:          "Viewport meta tag",
		Description:   "Declare a responsive viewport in the page head.",
		ExtractionKey: "viewport_meta",
		Condition:     condNotEmpty,
		Severity:      model.SeverityInfo,
		Weight:        30,
	},
}

// BuiltIn returns the compiled built-in merchant checklist. The returned
// checklist is a copy, callers may modify it freely.
func BuiltIn() *model.Checklist {
	rules := make([]model.Rule, len(builtinRules))
	copy(rules, builtinRules)

	order := make([]string, 0, len(builtinSections))
	weights := make(map[string]float64, len(builtinSections))
	for _, s := range builtinSections {
		order = append(order, s.Name)
		weights[s.Name] = s.Weight
	}

	return &model.Checklist{
		Name:           BuiltInChecklistName,
		Rules:          rules,
		SectionOrder:   order,
		SectionWeights: weights,
	}
}
