package clickhouse

import "fmt"

// Table names inside the configured database.
const (
	FeeStatsTable  = "fee_stats"
	PoolStatsTable = "pool_stats"
)

// FeeSchema returns the idempotent DDL for the fee store. Fixed-point values
// are kept as strings so no precision is lost before normalization.
func FeeSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    ts DateTime('UTC'),
    swap String,
    margin_and_liquidation String,
    mint String,
    burn String,
    source LowCardinality(String),
    ingested_at DateTime('UTC')
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY ts`, database, FeeStatsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    ts DateTime('UTC'),
    aum String,
    source LowCardinality(String),
    ingested_at DateTime('UTC')
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY ts`, database, PoolStatsTable),
	}
}
