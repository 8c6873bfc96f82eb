package credit

import "time"

type EntryType string

const (
	TypeBooking       EntryType = "booking"
	TypeRefund        EntryType = "refund"
	TypeAdjustment    EntryType = "adjustment"
	TypePurchase      EntryType = "purchase"
	TypeLateCancelFee EntryType = "late_cancel_fee"
)

// Entry is one append-only ledger row. Amount is signed: debits are
// negative, refunds and grants positive. The ledger explains every change
// to users.class_credits and is written in the same transaction.
type Entry struct {
	ID          string    `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Amount      int       `db:"amount" json:"amount"`
	Type        EntryType `db:"type" json:"type"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type AdjustRequest struct {
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type BalanceResponse struct {
	UserID  int `json:"user_id"`
	Balance int `json:"balance"`
}
