package models

import "time"

// Student represents a participant holding a ledger and a scan token.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	QRID      string    `db:"qr_id" json:"qr_id"`
	Active    bool      `db:"active" json:"active"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentFilterStatus selects which students are listed.
type StudentFilterStatus string

const (
	StudentFilterActive   StudentFilterStatus = "active"
	StudentFilterInactive StudentFilterStatus = "inactive"
	StudentFilterAll      StudentFilterStatus = "all"
)

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Status StudentFilterStatus
	Search string
}

// StudentSummary is a student with its derived balance and talent count.
type StudentSummary struct {
	Student
	Balance int64 `db:"balance" json:"balance"`
	Talents int64 `db:"talents" json:"talents"`
}
