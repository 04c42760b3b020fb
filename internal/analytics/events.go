package analytics

import "time"

// QueryEvent describes one executed query. Published to Kafka when
// analytics is enabled.
type QueryEvent struct {
	QueryID   int       `json:"query_id"`
	Query     string    `json:"query"`
	K         int       `json:"k"`
	Results   int       `json:"results"`
	LatencyMs float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
