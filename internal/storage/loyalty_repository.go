package storage

import (
	"context"

	"barberdesk/libs/db"
)

type LoyaltyRepository struct {
	pool *db.Pool
}

type LoyaltyBalance struct {
	CustomerEmail string
	Points        int
}

func NewLoyaltyRepository(pool *db.Pool) *LoyaltyRepository {
	return &LoyaltyRepository{pool: pool}
}

// Accrue credits points for a completed appointment. The unique constraint on
// appointment_id makes the accrual idempotent: replayed completion events
// insert zero rows and credit nothing.
func (r *LoyaltyRepository) Accrue(ctx context.Context, appointmentID, customerEmail string, points int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO loyalty_accruals (appointment_id, customer_email, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (appointment_id) DO NOTHING
	`, appointmentID, customerEmail, points)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO loyalty_balances (customer_email, points)
		VALUES ($1, $2)
		ON CONFLICT (customer_email) DO UPDATE
		SET points = loyalty_balances.points + EXCLUDED.points,
			updated_at = now()
	`, customerEmail, points)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *LoyaltyRepository) Balance(ctx context.Context, customerEmail string) (LoyaltyBalance, error) {
	bal := LoyaltyBalance{CustomerEmail: customerEmail}
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(points, 0)
		FROM loyalty_balances
		WHERE customer_email = $1
	`, customerEmail).Scan(&bal.Points)
	if err != nil {
		if IsNotFound(err) {
			return bal, nil
		}
		return LoyaltyBalance{}, err
	}
	return bal, nil
}
