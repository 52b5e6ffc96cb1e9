package model

import "time"

// Snapshot is one recorded statistics fetch.
type Snapshot struct {
	FetchedAt  time.Time       `json:"fetchedAt"`
	Statistics GroupStatistics `json:"statistics"`
	Source     string          `json:"source"`
	ID         int64           `json:"id"`
}
