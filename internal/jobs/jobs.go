package jobs

import (
	"sync"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/google/uuid"
)

// MaxHistory is the number of records a History keeps.
const MaxHistory = 100

// Record summarizes one cleaning run.
type Record struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	ScoreBefore int       `json:"score_before"`
	ScoreAfter  int       `json:"score_after"`
	DiffCount   int       `json:"diff_count"`
	OutPathCSV  string    `json:"out_path_csv,omitempty"`
	OutPathLog  string    `json:"out_path_log,omitempty"`
}

// NewRecord builds a record with a fresh ID from a finished report.
func NewRecord(filename string, rep *cleaning.Report, started, finished time.Time) Record {
	r := Record{
		ID:         uuid.NewString(),
		Filename:   filename,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if rep != nil {
		r.Rows = rep.Stats.RowCount
		r.Cols = len(rep.Columns)
		r.ScoreBefore = rep.ScoreBefore
		r.ScoreAfter = rep.ScoreAfter
		r.DiffCount = len(rep.Diffs)
	}
	return r
}

// Duration is the wall time of the run.
func (r Record) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// History keeps the most recent records in memory, newest first.
type History struct {
	mu      sync.Mutex
	records []Record
}

// Add prepends r, dropping the oldest record beyond MaxHistory.
func (h *History) Add(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]Record{r}, h.records...)
	if len(h.records) > MaxHistory {
		h.records = h.records[:MaxHistory]
	}
}

// List returns a copy of the records, newest first.
func (h *History) List() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
