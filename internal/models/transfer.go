package models

import (
	"encoding/json"
	"time"
)

// ExportVersion tags the export document layout.
const ExportVersion = 1

// Snapshot is the full data set moved by export and import.
type Snapshot struct {
	Students     []Student
	Items        []Item
	Transactions []Transaction
	Talents      []TalentLedgerEntry
	Settings     []Setting
	// ReplaceSettings is set when an import carries a settings section.
	ReplaceSettings bool
}

// ExportPayload is the JSON export document.
type ExportPayload struct {
	Version      int                 `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Students     []Student           `json:"students"`
	Items        []Item              `json:"items"`
	Transactions []Transaction       `json:"transactions"`
	Talents      []TalentLedgerEntry `json:"talents"`
	Settings     []Setting           `json:"settings"`
}

// ImportPayload accepts exports from this service and from older tooling
// that wrote flags as 0/1 and ids as strings, so loosely typed fields are
// kept raw until validated.
type ImportPayload struct {
	Version      json.RawMessage     `json:"version"`
	ExportedAt   json.RawMessage     `json:"exported_at"`
	Students     []ImportStudent     `json:"students"`
	Items        []ImportItem        `json:"items"`
	Transactions []ImportTransaction `json:"transactions"`
	Talents      []ImportTalent      `json:"talents"`
	Settings     []ImportSetting     `json:"settings"`
}

type ImportStudent struct {
	ID        json.RawMessage `json:"id"`
	Name      string          `json:"name"`
	QRID      string          `json:"qr_id"`
	Active    json.RawMessage `json:"active"`
	Notes     *string         `json:"notes"`
	CreatedAt string          `json:"created_at"`
}

type ImportItem struct {
	ID             json.RawMessage `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	PriceShekels   json.RawMessage `json:"price_shekels"`
	Inventory      json.RawMessage `json:"inventory"`
	GoalAmount     json.RawMessage `json:"goal_amount"`
	BuyInCost      json.RawMessage `json:"buy_in_cost"`
	ProgressAmount json.RawMessage `json:"progress_amount"`
	CompletedAt    *string         `json:"completed_at"`
	Active         json.RawMessage `json:"active"`
	SortOrder      json.RawMessage `json:"sort_order"`
	Category       string          `json:"category"`
	Rarity         string          `json:"rarity"`
	CreatedAt      string          `json:"created_at"`
}

type ImportTransaction struct {
	ID            json.RawMessage `json:"id"`
	StudentID     json.RawMessage `json:"student_id"`
	Type          string          `json:"type"`
	Reason        *string         `json:"reason"`
	AmountShekels json.RawMessage `json:"amount_shekels"`
	CreatedAt     string          `json:"created_at"`
}

type ImportTalent struct {
	StudentID json.RawMessage `json:"student_id"`
	Talents   json.RawMessage `json:"talents"`
}

type ImportSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
