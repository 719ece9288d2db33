package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"crowdfund-platform/internal/models"
)

const paymentColumns = `order_id, fundraiser_id, fundraiser_title, donor_id, donor_name, donor_email,
	amount, comment, status, gateway_tx_id, created_at`

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	p.CreatedAt = timestamp(p.CreatedAt)
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		p.OrderID, p.FundraiserID, p.FundraiserTitle, p.DonorID, p.DonorName, p.DonorEmail,
		p.Amount, p.Comment, string(p.Status), p.GatewayTxID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, orderID string) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = ?`
	if err := s.db.GetContext(ctx, &p, s.db.Rebind(query), orderID); err != nil {
		return nil, notFound(err, "payment "+orderID)
	}
	return &p, nil
}

// SettlePayment flips a pending payment to settled and records d, all in one
// transaction. A payment that is already settled yields ErrAlreadySettled and
// writes nothing.
func (s *Store) SettlePayment(ctx context.Context, orderID, gatewayTxID string, d *models.Donation) (int64, error) {
	var raised int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		update := `UPDATE payments SET status = ?, gateway_tx_id = ?, settled_at = ?
		           WHERE order_id = ? AND status = ?`
		res, err := tx.ExecContext(ctx, tx.Rebind(update),
			string(models.PaymentSettled), gatewayTxID, timestamp(time.Now()), orderID, string(models.PaymentPending))
		if err != nil {
			return fmt.Errorf("storage: settle payment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("storage: settle payment: %w", err)
		}
		if n == 0 {
			var count int
			if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM payments WHERE order_id = ?`), orderID); err != nil {
				return fmt.Errorf("storage: settle payment: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("payment %s: %w", orderID, models.ErrNotFound)
			}
			return models.ErrAlreadySettled
		}

		raised, err = recordDonation(ctx, tx, d)
		return err
	})
	return raised, err
}
