package models

// Settings keys persisted in the settings table.
const (
	SettingKeyEconomy = "economy"
	SettingKeyLabels  = "labels"
)

// Setting is a raw key/value row.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// MaxEconomyAmount caps every amount in EconomySettings.
const MaxEconomyAmount = 1000000

// EconomySettings holds reward amounts, the bonus range and the conversion
// rate. Values are passed by value so a caller's copy never changes under it.
type EconomySettings struct {
	AttendanceShekels    int64 `json:"attendance_shekels" validate:"gte=0,lte=1000000"`
	ParticipationShekels int64 `json:"participation_shekels" validate:"gte=0,lte=1000000"`
	MemoryVerseShekels   int64 `json:"memory_verse_shekels" validate:"gte=0,lte=1000000"`
	BonusMin             int64 `json:"bonus_min" validate:"gte=0,lte=1000000"`
	BonusMax             int64 `json:"bonus_max" validate:"gte=0,lte=1000000,gtefield=BonusMin"`
	ShekelsPerTalent     int64 `json:"shekels_per_talent" validate:"gt=0,lte=1000000"`
}

// DefaultEconomySettings returns the economy used before an admin saves one.
func DefaultEconomySettings() EconomySettings {
	return EconomySettings{
		AttendanceShekels:    2,
		ParticipationShekels: 1,
		MemoryVerseShekels:   3,
		BonusMin:             0,
		BonusMax:             3,
		ShekelsPerTalent:     25,
	}
}

// CurrencyLabels are the display names of both currencies.
type CurrencyLabels struct {
	ShekelsLabel string `json:"shekels_label"`
	TalentsLabel string `json:"talents_label"`
}

// DefaultCurrencyLabels returns the built-in currency names.
func DefaultCurrencyLabels() CurrencyLabels {
	return CurrencyLabels{ShekelsLabel: "Shekels", TalentsLabel: "Talents"}
}
