package model

// CardType tells the view how to format a card's value.
type CardType string

const (
	// CardTypeCurrency values are monetary amounts.
	CardTypeCurrency CardType = "currency"
	// CardTypeNumber values are plain counts.
	CardTypeNumber CardType = "number"
)

// StatCard is one display-ready summary card on the home view.
type StatCard struct {
	Label string   `json:"label"`
	Type  CardType `json:"type"`
	Value float64  `json:"value"`
}

// CardSlot identifies one of the fixed card positions.
type CardSlot int

const (
	// SlotValue is the total value of all items.
	SlotValue CardSlot = iota
	// SlotItems is the number of items.
	SlotItems
	// SlotLocations is the number of locations.
	SlotLocations
	// SlotLabels is the number of labels.
	SlotLabels
)

// CardSlots lists every slot in display order.
var CardSlots = []CardSlot{SlotValue, SlotItems, SlotLocations, SlotLabels}

// Label returns the fixed display label of the slot.
func (s CardSlot) Label() string {
	switch s {
	case SlotValue:
		return "总价值"
	case SlotItems:
		return "物品总数"
	case SlotLocations:
		return "位置总数"
	case SlotLabels:
		return "标签总数"
	default:
		return ""
	}
}

// Type returns the fixed card type of the slot.
func (s CardSlot) Type() CardType {
	if s == SlotValue {
		return CardTypeCurrency
	}
	return CardTypeNumber
}

// Field returns the slot's source field from stats, or nil when absent.
func (s CardSlot) Field(stats *GroupStatistics) *float64 {
	if stats == nil {
		return nil
	}
	switch s {
	case SlotValue:
		return stats.TotalItemPrice
	case SlotItems:
		return stats.TotalItems
	case SlotLocations:
		return stats.TotalLocations
	case SlotLabels:
		return stats.TotalLabels
	default:
		return nil
	}
}
