package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crowdfund-platform/internal/models"
)

const donationColumns = `id, fundraiser_id, fundraiser_title, donor_id, donor_name, donor_email, amount, comment, created_at`

// RecordDonation appends d to the ledger and adds its amount to the
// fundraiser's raised total in the same transaction. It returns the new total.
func (s *Store) RecordDonation(ctx context.Context, d *models.Donation) (int64, error) {
	var raised int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		raised, err = recordDonation(ctx, tx, d)
		return err
	})
	return raised, err
}

// recordDonation bumps the aggregate first so that concurrent donors queue on
// the fundraiser row, then inserts the ledger entry.
func recordDonation(ctx context.Context, tx *sqlx.Tx, d *models.Donation) (int64, error) {
	d.CreatedAt = timestamp(d.CreatedAt)

	update := `UPDATE fundraisers
	           SET raised_amount = raised_amount + ?, donation_count = donation_count + 1, updated_at = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, tx.Rebind(update), d.Amount, d.CreatedAt, d.FundraiserID)
	if err != nil {
		return 0, fmt.Errorf("storage: increment raised amount: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: increment raised amount: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("fundraiser %s: %w", d.FundraiserID, models.ErrNotFound)
	}

	insert := `INSERT INTO donations (` + donationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, tx.Rebind(insert),
		d.ID, d.FundraiserID, d.FundraiserTitle, d.DonorID, d.DonorName, d.DonorEmail,
		d.Amount, d.Comment, d.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert donation: %w", err)
	}

	var raised int64
	query := `SELECT raised_amount FROM fundraisers WHERE id = ?`
	if err := tx.GetContext(ctx, &raised, tx.Rebind(query), d.FundraiserID); err != nil {
		return 0, fmt.Errorf("storage: read raised amount: %w", err)
	}
	return raised, nil
}

// ListDonationsByFundraiser returns the ledger of one fundraiser, newest first.
func (s *Store) ListDonationsByFundraiser(ctx context.Context, fundraiserID string) ([]models.Donation, error) {
	return s.listDonations(ctx, "fundraiser_id", fundraiserID)
}

// ListDonationsByDonor returns everything a user has given, newest first.
func (s *Store) ListDonationsByDonor(ctx context.Context, donorID string) ([]models.Donation, error) {
	return s.listDonations(ctx, "donor_id", donorID)
}

func (s *Store) listDonations(ctx context.Context, column, value string) ([]models.Donation, error) {
	donations := []models.Donation{}
	query := `SELECT ` + donationColumns + ` FROM donations WHERE ` + column + ` = ? ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &donations, s.db.Rebind(query), value); err != nil {
		return nil, fmt.Errorf("storage: list donations: %w", err)
	}
	return donations, nil
}

// SumDonations adds up the ledger of one fundraiser.
func (s *Store) SumDonations(ctx context.Context, fundraiserID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM donations WHERE fundraiser_id = ?`
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(query), fundraiserID); err != nil {
		return 0, fmt.Errorf("storage: sum donations: %w", err)
	}
	return total, nil
}
