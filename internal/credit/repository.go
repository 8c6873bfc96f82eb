package credit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ApplyTx mutates the user's credit balance and appends the matching
// ledger entry inside the caller's transaction. Both writes land or
// neither does. A negative resulting balance is rejected unless forced.
// The caller must hold the user row lock (SELECT ... FOR UPDATE).
func ApplyTx(ctx context.Context, tx *sqlx.Tx, userID, amount int, entryType EntryType, description, createdBy string, force bool) error {
	var newBalance int
	err := tx.GetContext(ctx, &newBalance, `
		SELECT class_credits + $2
		FROM users
		WHERE id = $1
	`, userID, amount)
	if err != nil {
		return err
	}

	if newBalance < 0 && !force {
		return ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET class_credits = class_credits + $2
		WHERE id = $1
	`, userID, amount)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_ledger (id, user_id, amount, type, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), userID, amount, entryType, description, createdBy)

	return err
}

// Apply runs ApplyTx in its own transaction, locking the user row first.
func (r *Repository) Apply(ctx context.Context, userID, amount int, entryType EntryType, description, createdBy string, force bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int
	if err := tx.GetContext(ctx, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return err
	}

	if err := ApplyTx(ctx, tx, userID, amount, entryType, description, createdBy, force); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetBalance(ctx context.Context, userID int) (int, error) {
	var balance int
	err := r.db.GetContext(ctx, &balance, `SELECT class_credits FROM users WHERE id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return balance, nil
}

func (r *Repository) GetEntries(ctx context.Context, userID int, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, amount, type, description, created_by, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// SumEntries reconciles the ledger against the denormalized balance.
func (r *Repository) SumEntries(ctx context.Context, userID int) (int, error) {
	var sum int
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_ledger
		WHERE user_id = $1
	`, userID)

	return sum, err
}
