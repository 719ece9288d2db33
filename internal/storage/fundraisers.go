package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"crowdfund-platform/internal/models"
)

type fundraiserRow struct {
	ID                string    `db:"id"`
	OwnerID           string    `db:"owner_id"`
	Title             string    `db:"title"`
	Category          string    `db:"category"`
	Description       string    `db:"description"`
	TargetAmount      int64     `db:"target_amount"`
	RaisedAmount      int64     `db:"raised_amount"`
	DonationCount     int64     `db:"donation_count"`
	EndDate           time.Time `db:"end_date"`
	ContactName       string    `db:"contact_name"`
	ContactEmail      string    `db:"contact_email"`
	ContactMobile     string    `db:"contact_mobile"`
	BankAccountHolder string    `db:"bank_account_holder"`
	BankAccountNumber string    `db:"bank_account_number"`
	BankName          string    `db:"bank_name"`
	BankUPIID         string    `db:"bank_upi_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r fundraiserRow) toModel() models.Fundraiser {
	return models.Fundraiser{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Category:      models.Category(r.Category),
		Description:   r.Description,
		TargetAmount:  r.TargetAmount,
		RaisedAmount:  r.RaisedAmount,
		DonationCount: r.DonationCount,
		EndDate:       r.EndDate,
		Contact: models.ContactDetails{
			Name:   r.ContactName,
			Email:  r.ContactEmail,
			Mobile: r.ContactMobile,
		},
		Bank: models.BankDetails{
			AccountHolderName: r.BankAccountHolder,
			AccountNumber:     r.BankAccountNumber,
			BankName:          r.BankName,
			UPIID:             r.BankUPIID,
		},
		Documents: []models.Document{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type documentRow struct {
	FundraiserID string    `db:"fundraiser_id"`
	Seq          int       `db:"seq"`
	Type         string    `db:"doc_type"`
	URL          string    `db:"url"`
	Name         string    `db:"name"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

const fundraiserColumns = `id, owner_id, title, category, description, target_amount, raised_amount,
	donation_count, end_date, contact_name, contact_email, contact_mobile, bank_account_holder,
	bank_account_number, bank_name, bank_upi_id, created_at, updated_at`

// CreateFundraiser stores f and its documents in one transaction.
func (s *Store) CreateFundraiser(ctx context.Context, f *models.Fundraiser) error {
	f.CreatedAt = timestamp(f.CreatedAt)
	f.UpdatedAt = timestamp(f.UpdatedAt)
	f.EndDate = timestamp(f.EndDate)

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO fundraisers (` + fundraiserColumns + `)
		          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, tx.Rebind(query),
			f.ID, f.OwnerID, f.Title, string(f.Category), f.Description, f.TargetAmount, f.RaisedAmount,
			f.DonationCount, f.EndDate, f.Contact.Name, f.Contact.Email, f.Contact.Mobile,
			f.Bank.AccountHolderName, f.Bank.AccountNumber, f.Bank.BankName, f.Bank.UPIID,
			f.CreatedAt, f.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("storage: insert fundraiser: %w", err)
		}

		docQuery := tx.Rebind(`INSERT INTO fundraiser_documents (fundraiser_id, seq, doc_type, url, name, uploaded_at)
		                       VALUES (?, ?, ?, ?, ?, ?)`)
		for i := range f.Documents {
			d := &f.Documents[i]
			d.UploadedAt = timestamp(d.UploadedAt)
			if _, err := tx.ExecContext(ctx, docQuery, f.ID, i, string(d.Type), d.URL, d.Name, d.UploadedAt); err != nil {
				return fmt.Errorf("storage: insert document: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) GetFundraiser(ctx context.Context, id string) (*models.Fundraiser, error) {
	var row fundraiserRow
	query := `SELECT ` + fundraiserColumns + ` FROM fundraisers WHERE id = ?`
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), id); err != nil {
		return nil, notFound(err, "fundraiser "+id)
	}

	out := []models.Fundraiser{row.toModel()}
	if err := s.attachDocuments(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// FundraiserFilter narrows ListFundraisers. Zero values mean "no restriction".
type FundraiserFilter struct {
	Category string
	OwnerID  string
	Limit    int
}

// ListFundraisers returns matching fundraisers, newest first.
func (s *Store) ListFundraisers(ctx context.Context, filter FundraiserFilter) ([]models.Fundraiser, error) {
	query := `SELECT ` + fundraiserColumns + ` FROM fundraisers WHERE 1 = 1`
	var args []any
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []fundraiserRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("storage: list fundraisers: %w", err)
	}

	out := make([]models.Fundraiser, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	if err := s.attachDocuments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachDocuments loads the documents of all fundraisers with a single query.
func (s *Store) attachDocuments(ctx context.Context, fundraisers []models.Fundraiser) error {
	if len(fundraisers) == 0 {
		return nil
	}

	ids := make([]string, len(fundraisers))
	index := make(map[string]int, len(fundraisers))
	for i, f := range fundraisers {
		ids[i] = f.ID
		index[f.ID] = i
	}

	query, args, err := sqlx.In(`SELECT fundraiser_id, seq, doc_type, url, name, uploaded_at
	                             FROM fundraiser_documents WHERE fundraiser_id IN (?)
	                             ORDER BY fundraiser_id, seq`, ids)
	if err != nil {
		return fmt.Errorf("storage: build document query: %w", err)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("storage: load documents: %w", err)
	}
	for _, r := range rows {
		f := &fundraisers[index[r.FundraiserID]]
		f.Documents = append(f.Documents, models.Document{
			Type:       models.DocumentType(r.Type),
			URL:        r.URL,
			Name:       r.Name,
			UploadedAt: r.UploadedAt,
		})
	}
	return nil
}
