package program

import "time"

// Program is a gym's rank ladder (e.g. a belt system).
type Program struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Rank is one rung of a program's ladder, ordered by Position.
type Rank struct {
	ID        int    `db:"id" json:"id"`
	ProgramID int    `db:"program_id" json:"program_id"`
	Name      string `db:"name" json:"name"`
	Position  int    `db:"position" json:"position"`
}

// UserRank tracks a member's progress inside one program. Credits counts
// attended classes since the last promotion.
type UserRank struct {
	UserID    int       `db:"user_id" json:"user_id"`
	ProgramID int       `db:"program_id" json:"program_id"`
	RankID    int       `db:"rank_id" json:"rank_id"`
	Stripes   int       `db:"stripes" json:"stripes"`
	Credits   int       `db:"credits" json:"credits"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
