package program

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNoRanksDefined = errors.New("program has no ranks defined")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateProgram inserts a program with its rank ladder, ordered as given.
func (r *Repository) CreateProgram(ctx context.Context, gymID int, name string, ranks []string) (*Program, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := &Program{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO programs (gym_id, name)
		VALUES ($1, $2)
		RETURNING id, gym_id, name, created_at
	`, gymID, name).StructScan(p)
	if err != nil {
		return nil, err
	}

	for i, rankName := range ranks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO program_ranks (program_id, name, position)
			VALUES ($1, $2, $3)
		`, p.ID, rankName, i+1)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetProgram(ctx context.Context, id int) (*Program, error) {
	p := &Program{}
	err := r.db.GetContext(ctx, p, `
		SELECT id, gym_id, name, created_at
		FROM programs
		WHERE id = $1
	`, id)

	return p, err
}

func (r *Repository) ListRanks(ctx context.Context, programID int) ([]Rank, error) {
	ranks := []Rank{}
	err := r.db.SelectContext(ctx, &ranks, `
		SELECT id, program_id, name, position
		FROM program_ranks
		WHERE program_id = $1
		ORDER BY position ASC
	`, programID)

	return ranks, err
}

func (r *Repository) GetUserRank(ctx context.Context, userID, programID int) (*UserRank, error) {
	ur := &UserRank{}
	err := r.db.GetContext(ctx, ur, `
		SELECT user_id, program_id, rank_id, stripes, credits, updated_at
		FROM user_ranks
		WHERE user_id = $1 AND program_id = $2
	`, userID, programID)

	return ur, err
}

// RecordAttendanceTx applies the progression side effect of an attended
// class inside the caller's transaction: increment the existing rank
// entry, or lazily seed the first rank on first contact with the program.
// A prospect member is promoted to active at that moment.
func RecordAttendanceTx(ctx context.Context, tx *sqlx.Tx, userID, programID int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE user_ranks
		SET credits = credits + 1, updated_at = NOW()
		WHERE user_id = $1 AND program_id = $2
	`, userID, programID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		// First contact with this program: seed from the lowest rank.
		var firstRankID int
		err := tx.GetContext(ctx, &firstRankID, `
			SELECT id
			FROM program_ranks
			WHERE program_id = $1
			ORDER BY position ASC
			LIMIT 1
		`, programID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoRanksDefined
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_ranks (user_id, program_id, rank_id, stripes, credits)
			VALUES ($1, $2, $3, 0, 1)
		`, userID, programID, firstRankID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET status = 'active', converted_at = NOW()
			WHERE id = $1 AND status = 'prospect'
		`, userID)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET attendance_count = attendance_count + 1
		WHERE id = $1
	`, userID)

	return err
}

// ReverseAttendanceTx undoes the progression increment when an attended
// booking is cancelled. The seeded rank entry is kept; only counters move.
func ReverseAttendanceTx(ctx context.Context, tx *sqlx.Tx, userID, programID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_ranks
		SET credits = GREATEST(credits - 1, 0), updated_at = NOW()
		WHERE user_id = $1 AND program_id = $2
	`, userID, programID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET attendance_count = GREATEST(attendance_count - 1, 0)
		WHERE id = $1
	`, userID)

	return err
}
