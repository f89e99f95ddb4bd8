package server

import (
	"sync"
	"time"
)

const defaultRecentQueries = 50

// queryRecord is one served encode request.
type queryRecord struct {
	Text       string    `json:"text"`
	At         time.Time `json:"at"`
	DurationMS int64     `json:"duration_ms"`
}

type statsResponse struct {
	StartedAt time.Time     `json:"started_at"`
	Queries   int64         `json:"queries"`
	AvgMS     float64       `json:"avg_ms"`
	Recent    []queryRecord `json:"recent"`
}

// tracker keeps a request count and the most recent queries, newest last.
type tracker struct {
	mu      sync.Mutex
	started time.Time
	total   int64
	totalMS int64
	recent  []queryRecord
	limit   int
}

func newTracker(started time.Time, limit int) *tracker {
	return &tracker{started: started, limit: max(limit, 1)}
}

func (t *tracker) record(text string, at time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.totalMS += d.Milliseconds()
	if len(t.recent) == t.limit {
		copy(t.recent, t.recent[1:])
		t.recent = t.recent[:len(t.recent)-1]
	}
	t.recent = append(t.recent, queryRecord{Text: text, At: at, DurationMS: d.Milliseconds()})
}

func (t *tracker) snapshot() statsResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := statsResponse{
		StartedAt: t.started,
		Queries:   t.total,
		Recent:    append([]queryRecord{}, t.recent...),
	}
	if t.total > 0 {
		s.AvgMS = float64(t.totalMS) / float64(t.total)
	}
	return s
}
