package domain

// StreamPOIRecompute is the Redis stream carrying POI recompute jobs
// enqueued by the operator API and consumed by the background worker.
const StreamPOIRecompute = "stream:poi:recompute"

// StreamMessage is one raw message read from a stream.
type StreamMessage struct {
	ID   string
	Data string
}

// POIRecomputeEvent is the payload of one recompute job.
type POIRecomputeEvent struct {
	StatisticID string `json:"statistic_id"`
	Force       bool   `json:"force"`
	RetryCount  int    `json:"retry_count"`
}
