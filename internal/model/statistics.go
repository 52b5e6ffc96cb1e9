package model

// GroupStatistics is the pre-aggregated summary the server returns for a group.
// Every field is optional; a nil pointer means the server did not send it.
type GroupStatistics struct {
	TotalItemPrice *float64 `json:"totalItemPrice,omitempty"`
	TotalItems     *float64 `json:"totalItems,omitempty"`
	TotalLocations *float64 `json:"totalLocations,omitempty"`
	TotalLabels    *float64 `json:"totalLabels,omitempty"`
}

// Float64 returns a pointer to v. It is a convenience for building GroupStatistics literals.
func Float64(v float64) *float64 {
	return &v
}

// ValueOr returns the value behind p, or 0 when p is nil.
func ValueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// IsEmpty returns true if no field is populated.
func (s *GroupStatistics) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.TotalItemPrice == nil && s.TotalItems == nil && s.TotalLocations == nil && s.TotalLabels == nil
}

// Clone returns a deep copy so callers can't mutate a shared document.
func (s *GroupStatistics) Clone() *GroupStatistics {
	if s == nil {
		return nil
	}
	clone := &GroupStatistics{}
	if s.TotalItemPrice != nil {
		clone.TotalItemPrice = Float64(*s.TotalItemPrice)
	}
	if s.TotalItems != nil {
		clone.TotalItems = Float64(*s.TotalItems)
	}
	if s.TotalLocations != nil {
		clone.TotalLocations = Float64(*s.TotalLocations)
	}
	if s.TotalLabels != nil {
		clone.TotalLabels = Float64(*s.TotalLabels)
	}
	return clone
}
