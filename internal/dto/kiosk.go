package dto

import "github.com/noah-isme/storehouse-api/internal/models"

// EarnRequest selects the earn category for a kiosk award.
type EarnRequest struct {
	Type string `json:"type" validate:"required"`
}

// BuyRequest identifies the item a student is buying or contributing to.
type BuyRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

// KioskItem decorates a catalog item with affordability flags for one student.
type KioskItem struct {
	models.Item
	CanAfford bool `json:"can_afford"`
	SoldOut   bool `json:"sold_out"`
	CanBuy    bool `json:"can_buy"`
}

// KioskStudentPage is everything the kiosk shows after a scan.
type KioskStudentPage struct {
	Student      models.StudentSummary  `json:"student"`
	Economy      models.EconomySettings `json:"economy"`
	Labels       models.CurrencyLabels  `json:"labels"`
	Items        []KioskItem            `json:"items"`
	Transactions []models.Transaction   `json:"transactions"`
}

// EarnResult reports the transaction written by an award.
type EarnResult struct {
	Transaction models.Transaction `json:"transaction"`
	Balance     int64              `json:"balance"`
}

// PurchaseResult reports a completed standard purchase.
type PurchaseResult struct {
	ItemID    int64  `json:"item_id"`
	ItemName  string `json:"item_name"`
	Price     int64  `json:"price"`
	Inventory int64  `json:"inventory"`
	Balance   int64  `json:"balance"`
}

// GroupBuyResult reports a group-buy contribution.
type GroupBuyResult struct {
	Success        bool  `json:"success"`
	Complete       bool  `json:"complete"`
	ProgressAmount int64 `json:"progress_amount"`
	GoalAmount     int64 `json:"goal_amount"`
	Balance        int64 `json:"balance"`
}

// ConversionResult reports the balances after a Shekels to Talent conversion.
type ConversionResult struct {
	Talents int64 `json:"talents"`
	Balance int64 `json:"balance"`
}
