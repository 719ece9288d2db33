package models

import (
	"math"
	"time"
)

// We use 'db' tags for sqlx to automatically map
// the database column names (snake_case) to our Go fields (CamelCase).

// User represents an account and its login details.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Mobile       string    `db:"mobile" json:"mobile"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the part of a User that is safe to send to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Mobile:    u.Mobile,
		CreatedAt: u.CreatedAt,
	}
}

// Category is one of the fixed fundraiser categories.
type Category string

const (
	CategoryMedicalEmergency     Category = "Medical Emergency"
	CategoryEducation            Category = "Education"
	CategoryNaturalDisaster      Category = "Natural Disaster"
	CategoryAnimalWelfare        Category = "Animal Welfare"
	CategoryCommunityDevelopment Category = "Community Development"
	CategoryOthers               Category = "Others"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryMedicalEmergency,
	CategoryEducation,
	CategoryNaturalDisaster,
	CategoryAnimalWelfare,
	CategoryCommunityDevelopment,
	CategoryOthers,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DocumentType classifies a supporting document.
type DocumentType string

const (
	DocumentIdentity DocumentType = "identity"
	DocumentMedical  DocumentType = "medical"
	DocumentLegal    DocumentType = "legal"
	DocumentOther    DocumentType = "other"
)

var DocumentTypes = []DocumentType{DocumentIdentity, DocumentMedical, DocumentLegal, DocumentOther}

func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Document is an uploaded file attached to a fundraiser.
type Document struct {
	Type       DocumentType `json:"type"`
	URL        string       `json:"url"`
	Name       string       `json:"name"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// ContactDetails is a snapshot of the owner taken when the fundraiser is created.
// It is not refreshed when the user record changes.
type ContactDetails struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// BankDetails holds the payout account of a fundraiser.
type BankDetails struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	BankName          string `json:"bank_name"`
	UPIID             string `json:"upi_id,omitempty"`
}

// Fundraiser is a campaign with a goal and an accumulating raised total.
// RaisedAmount and DonationCount only ever change through the donation workflow.
type Fundraiser struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Title         string         `json:"title"`
	Category      Category       `json:"category"`
	Description   string         `json:"description"`
	TargetAmount  int64          `json:"target_amount"`
	RaisedAmount  int64          `json:"raised_amount"`
	DonationCount int64          `json:"donation_count"`
	EndDate       time.Time      `json:"end_date"`
	Contact       ContactDetails `json:"contact"`
	Bank          BankDetails    `json:"bank"`
	Documents     []Document     `json:"documents"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FundraiserStatus is derived from the clock and the totals, never stored.
type FundraiserStatus string

const (
	StatusActive FundraiserStatus = "active"
	StatusFunded FundraiserStatus = "funded"
	StatusEnded  FundraiserStatus = "ended"
)

func (f *Fundraiser) Status(now time.Time) FundraiserStatus {
	if !now.Before(f.EndDate) {
		return StatusEnded
	}
	if f.RaisedAmount >= f.TargetAmount {
		return StatusFunded
	}
	return StatusActive
}

// PercentageReached is raised/target as a percentage, rounded to two decimals.
func (f *Fundraiser) PercentageReached() float64 {
	if f.TargetAmount <= 0 {
		return 0
	}
	pct := float64(f.RaisedAmount) / float64(f.TargetAmount) * 100
	return math.Round(pct*100) / 100
}

// DaysRemaining rounds up to whole days and is zero once the end date has passed.
func (f *Fundraiser) DaysRemaining(now time.Time) int {
	left := f.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// Donation is an immutable record of one contribution.
type Donation struct {
	ID              string    `db:"id" json:"id"`
	FundraiserID    string    `db:"fundraiser_id" json:"fundraiser_id"`
	FundraiserTitle string    `db:"fundraiser_title" json:"fundraiser_title"`
	DonorID         string    `db:"donor_id" json:"donor_id"`
	DonorName       string    `db:"donor_name" json:"donor_name"`
	DonorEmail      string    `db:"donor_email" json:"donor_email"`
	Amount          int64     `db:"amount" json:"amount"`
	Comment         string    `db:"comment" json:"comment"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PaymentStatus tracks a gateway checkout.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSettled PaymentStatus = "settled"
)

// Payment is a donation waiting for the payment gateway to settle it.
type Payment struct {
	OrderID         string        `db:"order_id" json:"order_id"`
	FundraiserID    string        `db:"fundraiser_id" json:"fundraiser_id"`
	FundraiserTitle string        `db:"fundraiser_title" json:"fundraiser_title"`
	DonorID         string        `db:"donor_id" json:"donor_id"`
	DonorName       string        `db:"donor_name" json:"donor_name"`
	DonorEmail      string        `db:"donor_email" json:"donor_email"`
	Amount          int64         `db:"amount" json:"amount"`
	Comment         string        `db:"comment" json:"comment"`
	Status          PaymentStatus `db:"status" json:"status"`
	GatewayTxID     string        `db:"gateway_tx_id" json:"gateway_tx_id"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// Profile is a read-only composition of a user and their activity.
type Profile struct {
	User         PublicUser   `json:"user"`
	Fundraisers  []Fundraiser `json:"fundraisers"`
	Donations    []Donation   `json:"donations"`
	TotalDonated int64        `json:"total_donated"`
}

// FundraiserInput is what the creation wizard submits.
type FundraiserInput struct {
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	TargetAmount      int64     `json:"target_amount"`
	EndDate           time.Time `json:"end_date"`
	AccountHolderName string    `json:"account_holder_name"`
	AccountNumber     string    `json:"account_number"`
	BankName          string    `json:"bank_name"`
	UPIID             string    `json:"upi_id"`
}

// SignupInput is the registration form.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}
