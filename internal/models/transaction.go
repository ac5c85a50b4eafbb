package models

import "time"

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TransactionEarn     TransactionType = "earn"
	TransactionSpend    TransactionType = "spend"
	TransactionAdjust   TransactionType = "adjust"
	TransactionGroupBuy TransactionType = "group_buy"
	TransactionConvert  TransactionType = "convert"
)

// Transaction is an immutable signed ledger entry. A student's balance is the
// sum of AmountShekels over all of their transactions.
type Transaction struct {
	ID            int64           `db:"id" json:"id"`
	StudentID     int64           `db:"student_id" json:"student_id"`
	Type          TransactionType `db:"type" json:"type"`
	Reason        *string         `db:"reason" json:"reason"`
	AmountShekels int64           `db:"amount_shekels" json:"amount_shekels"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ReasonOr returns the reason text or fallback when it is empty.
func (t Transaction) ReasonOr(fallback string) string {
	if t.Reason == nil || *t.Reason == "" {
		return fallback
	}
	return *t.Reason
}

// TransactionFilter narrows transaction report queries.
type TransactionFilter struct {
	StudentID *int64
	Type      TransactionType
	From      *time.Time
	To        *time.Time
	Limit     int
}

// TransactionReportRow joins a transaction with its student name.
type TransactionReportRow struct {
	Transaction
	StudentName string `db:"student_name" json:"student_name"`
}

// TalentLedgerEntry stores accumulated talents for a student.
type TalentLedgerEntry struct {
	StudentID int64 `db:"student_id" json:"student_id"`
	Talents   int64 `db:"talents" json:"talents"`
}
