package core

import (
	"math"
	"time"
)

// ScoreRecord is the per-prompt output row.
//
// Judged scores (RCS, FMS, BDS) are nil when the judge could not produce an
// answer; they serialize as JSON null. TokenCount and TooLong are only set when
// the active judge backend measures prompts with a tokenizer.
type ScoreRecord struct {
	Prompt     string   `json:"prompt"`
	TokenCount *int     `json:"token_count,omitempty"`
	TooLong    *bool    `json:"too_long,omitempty"`
	PQS        float64  `json:"PQS"`
	G          float64  `json:"G"`
	F          float64  `json:"F"`
	C          float64  `json:"C"`
	CLS        float64  `json:"CLS"`
	RCS        *float64 `json:"RCS"`
	FMS        *float64 `json:"FMS"`
	BDS        *float64 `json:"BDS"`
}

// Report is the ordered result of one batch run.
type Report struct {
	RunID   string        `json:"run_id"`
	Backend string        `json:"backend"`
	Records []ScoreRecord `json:"records"`
	Skipped int           `json:"skipped"`
	// GrammarFailures counts records whose G was computed without a
	// successful grammar check.
	GrammarFailures int       `json:"grammar_failures"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Undefined counts records carrying at least one undefined judged score.
func (r *Report) Undefined() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, rec := range r.Records {
		if rec.RCS == nil || rec.FMS == nil || rec.BDS == nil {
			count++
		}
	}
	return count
}

// TooLong counts records that exceeded the judge context window.
func (r *Report) TooLong() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, rec := range r.Records {
		if rec.TooLong != nil && *rec.TooLong {
			count++
		}
	}
	return count
}

// Round3 rounds half away from zero to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round3Ptr rounds an optional score, preserving nil.
func Round3Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := Round3(*v)
	return &rounded
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
