// Package validation holds the field rules shared by the fundraiser creation
// wizard and the API. Rules are validator/v10 tag strings so the same table can
// be served to clients and evaluated on the server.
package validation

import (
	"time"

	"crowdfund-platform/internal/models"
)

// Step is one page of the fundraiser creation wizard.
type Step string

const (
	StepCause     Step = "cause"
	StepBank      Step = "bank"
	StepDocuments Step = "documents"
)

var Steps = []Step{StepCause, StepBank, StepDocuments}

func (s Step) Valid() bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// Field describes one input and its constraints.
// WizardRules, when set, replace Rules while validating a single wizard step.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Step        Step   `json:"step,omitempty"`
	Rules       string `json:"rules"`
	WizardRules string `json:"wizard_rules,omitempty"`
}

const maxDocuments = 10

var FundraiserFields = []Field{
	{Name: "title", Step: StepCause, Rules: "required,max=100"},
	{Name: "category", Step: StepCause, Rules: "required,category"},
	{Name: "description", Step: StepCause, Rules: "required,min=50,max=5000"},
	{Name: "target_amount", Step: StepCause, Rules: "required,gt=0"},
	{Name: "end_date", Step: StepCause, Rules: "required,future"},
	{Name: "account_holder_name", Step: StepBank, Rules: "required,max=100"},
	{Name: "account_number", Step: StepBank, Rules: "required,number,min=9,max=18"},
	{Name: "bank_name", Step: StepBank, Rules: "required,max=100"},
	{Name: "upi_id", Label: "UPI ID", Step: StepBank, Rules: "omitempty,upi"},
	{Name: "documents", Step: StepDocuments, Rules: "max=10,doctypes", WizardRules: "min=1,max=10,doctypes"},
}

var SignupFields = []Field{
	{Name: "name", Rules: "required,max=100"},
	{Name: "email", Rules: "required,email"},
	{Name: "mobile", Rules: "required,number,len=10"},
	{Name: "password", Rules: "required,min=6,max=72"},
}

var DonationFields = []Field{
	{Name: "amount", Rules: "required,gt=0"},
	{Name: "comment", Rules: "max=500"},
}

func fundraiserValues(in models.FundraiserInput, docs []models.Document) map[string]any {
	return map[string]any{
		"title":               in.Title,
		"category":            in.Category,
		"description":         in.Description,
		"target_amount":       in.TargetAmount,
		"end_date":            in.EndDate,
		"account_holder_name": in.AccountHolderName,
		"account_number":      in.AccountNumber,
		"bank_name":           in.BankName,
		"upi_id":              in.UPIID,
		"documents":           docs,
	}
}

func signupValues(in models.SignupInput) map[string]any {
	return map[string]any{
		"name":     in.Name,
		"email":    in.Email,
		"mobile":   in.Mobile,
		"password": in.Password,
	}
}

// Document is the schema payload served to the wizard.
type Document struct {
	Steps         []Step                `json:"steps"`
	Fundraiser    []Field               `json:"fundraiser"`
	Signup        []Field               `json:"signup"`
	Donation      []Field               `json:"donation"`
	Categories    []models.Category     `json:"categories"`
	DocumentTypes []models.DocumentType `json:"document_types"`
	MaxDocuments  int                   `json:"max_documents"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

func Schema(now time.Time) Document {
	return Document{
		Steps:         Steps,
		Fundraiser:    withLabels(FundraiserFields),
		Signup:        withLabels(SignupFields),
		Donation:      withLabels(DonationFields),
		Categories:    models.Categories,
		DocumentTypes: models.DocumentTypes,
		MaxDocuments:  maxDocuments,
		GeneratedAt:   now,
	}
}

func withLabels(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Label = label(f)
		out[i] = f
	}
	return out
}
