package models

import "time"

// Fee component order as served by the stats subgraph.
const (
	ComponentSwap = iota
	ComponentMarginAndLiquidation
	ComponentMint
	ComponentBurn
	ComponentCount
)

// RawFeeRecord is one daily fee bucket with fixed-point component strings.
type RawFeeRecord struct {
	Timestamp  int64    `json:"timestamp"`
	Components []string `json:"components"` // swap, marginAndLiquidation, mint, burn
}

// Snapshot is what a FeeSource returns: the latest pool valuation plus the
// most recent daily fee buckets, newest first or in any order.
type Snapshot struct {
	PoolValuationRaw string         `json:"pool_valuation_raw"`
	ValuationTime    int64          `json:"valuation_time,omitempty"`
	Records          []RawFeeRecord `json:"records"`
	Source           string         `json:"source"`
	FetchedAt        time.Time      `json:"fetched_at"`
}

// SnapshotEvent is the envelope published to the snapshot topic.
type SnapshotEvent struct {
	ID       string    `json:"id"`
	Snapshot Snapshot  `json:"snapshot"`
	SentAt   time.Time `json:"sent_at"`
}

// FeeRecord is a normalized daily fee total.
type FeeRecord struct {
	Timestamp int64   `json:"timestamp"`
	Fees      float64 `json:"fees"`
}

// DatedRecord places a FeeRecord inside the analysis window.
type DatedRecord struct {
	FeeRecord
	DayOfWeek  int `json:"day_of_week"` // 1..7
	WeekNumber int `json:"week_number"` // 1..N completed, N+1 current
}
