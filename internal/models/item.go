package models

import (
	"strings"
	"time"
)

// ItemType distinguishes priced stock from pooled group buys.
type ItemType string

const (
	ItemTypeStandard ItemType = "standard"
	ItemTypeGroupBuy ItemType = "group_buy"
)

// NormalizeItemType maps unknown values to the standard variant.
func NormalizeItemType(raw string) ItemType {
	if ItemType(strings.TrimSpace(strings.ToLower(raw))) == ItemTypeGroupBuy {
		return ItemTypeGroupBuy
	}
	return ItemTypeStandard
}

// Rarity is a cosmetic tier used by the kiosk.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// NormalizeRarity maps unknown values to common.
func NormalizeRarity(raw string) Rarity {
	switch r := Rarity(strings.TrimSpace(strings.ToLower(raw))); r {
	case RarityUncommon, RarityRare, RarityLegendary:
		return r
	default:
		return RarityCommon
	}
}

// DefaultItemCategory is applied when no category is given.
const DefaultItemCategory = "snack"

// Item is a catalog entry. Standard items use PriceShekels and Inventory;
// group buys use GoalAmount, BuyInCost, ProgressAmount and CompletedAt.
type Item struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Type           ItemType   `db:"type" json:"type"`
	PriceShekels   int64      `db:"price_shekels" json:"price_shekels"`
	Inventory      int64      `db:"inventory" json:"inventory"`
	GoalAmount     *int64     `db:"goal_amount" json:"goal_amount"`
	BuyInCost      *int64     `db:"buy_in_cost" json:"buy_in_cost"`
	ProgressAmount int64      `db:"progress_amount" json:"progress_amount"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at"`
	Active         bool       `db:"active" json:"active"`
	SortOrder      int        `db:"sort_order" json:"sort_order"`
	Category       string     `db:"category" json:"category"`
	Rarity         Rarity     `db:"rarity" json:"rarity"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// IsGroupBuy reports whether the item is a pooled group buy.
func (i Item) IsGroupBuy() bool {
	return i.Type == ItemTypeGroupBuy
}

// Goal returns the group-buy goal or zero when unset.
func (i Item) Goal() int64 {
	if i.GoalAmount == nil {
		return 0
	}
	return *i.GoalAmount
}

// BuyIn returns the group-buy contribution or zero when unset.
func (i Item) BuyIn() int64 {
	if i.BuyInCost == nil {
		return 0
	}
	return *i.BuyInCost
}

// GroupBuyConfigured reports whether goal and buy-in are both positive.
func (i Item) GroupBuyConfigured() bool {
	return i.Goal() > 0 && i.BuyIn() > 0
}

// GroupBuyComplete reports whether the item stops accepting contributions.
func (i Item) GroupBuyComplete() bool {
	return i.CompletedAt != nil || i.ProgressAmount >= i.Goal()
}
