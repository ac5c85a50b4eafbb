package dto

import "github.com/noah-isme/storehouse-api/internal/models"

// CreateStudentRequest creates a student with a fresh scan token.
type CreateStudentRequest struct {
	Name   string  `json:"name" validate:"required,max=120"`
	Notes  *string `json:"notes"`
	Active *bool   `json:"active"`
}

// UpdateStudentRequest patches editable student fields.
type UpdateStudentRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=120"`
	Notes  *string `json:"notes"`
	Active *bool   `json:"active"`
}

// BulkDeleteStudentsRequest removes students together with their ledger rows.
type BulkDeleteStudentsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// BulkDeleteResult reports how many students were removed.
type BulkDeleteResult struct {
	Deleted int64 `json:"deleted"`
}

// StudentDetail is the admin view of one student.
type StudentDetail struct {
	Student      models.StudentSummary `json:"student"`
	Transactions []models.Transaction  `json:"transactions"`
}

// BulkAwardRequest awards one earn category to many students at once.
type BulkAwardRequest struct {
	StudentIDs []int64 `json:"student_ids" validate:"required,min=1,dive,gt=0"`
	Type       string  `json:"type" validate:"required"`
}

// BulkAwardResult lists the transactions written by a bulk award.
type BulkAwardResult struct {
	Transactions []models.Transaction `json:"transactions"`
}

// AdjustRequest applies a manual signed correction.
type AdjustRequest struct {
	Amount *int64 `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// UpsertItemRequest creates or replaces a catalog item.
type UpsertItemRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Type         string `json:"type"`
	PriceShekels int64  `json:"price_shekels" validate:"gte=0"`
	Inventory    int64  `json:"inventory" validate:"gte=0"`
	GoalAmount   *int64 `json:"goal_amount"`
	BuyInCost    *int64 `json:"buy_in_cost"`
	Active       *bool  `json:"active"`
	SortOrder    int    `json:"sort_order"`
	Category     string `json:"category"`
	Rarity       string `json:"rarity"`
}

// SettingsView bundles the economy and currency labels.
type SettingsView struct {
	Economy models.EconomySettings `json:"economy"`
	Labels  models.CurrencyLabels  `json:"labels"`
}

// ImportResult counts the rows written by an import.
type ImportResult struct {
	Students     int  `json:"students"`
	Items        int  `json:"items"`
	Transactions int  `json:"transactions"`
	Talents      int  `json:"talents"`
	Settings     int  `json:"settings"`
	SettingsKept bool `json:"settings_kept"`
}

// BackupJobResponse reports the state of a backup job.
type BackupJobResponse struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	File   *BackupFile `json:"file,omitempty"`
}

// BackupFile describes a finished backup and its signed download token.
type BackupFile struct {
	JobID     string `json:"job_id"`
	Path      string `json:"path"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
