// Package output renders analysis reports and judge instruction listings.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/promptlens/promptlens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatNone     Format = "none"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatNone):
		return FormatNone, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// MetricNames lists record metrics in output order.
var MetricNames = []string{"PQS", "G", "F", "C", "CLS", "RCS", "FMS", "BDS"}

// MetricStat aggregates one metric across a report.
type MetricStat struct {
	Name string `json:"name"`
	// Mean is nil when no record defines the metric.
	Mean    *float64 `json:"mean"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Defined int      `json:"defined"`
}

// Summary describes a finished analysis run.
type Summary struct {
	RunID     string `json:"run_id"`
	Backend   string `json:"backend"`
	Prompts   int    `json:"prompts"`
	Skipped   int    `json:"skipped"`
	TooLong   int    `json:"too_long"`
	Undefined int    `json:"undefined"`
	// GrammarFailures counts prompts scored without a working grammar check.
	GrammarFailures int          `json:"grammar_failures"`
	Duration        string       `json:"duration"`
	Output          string       `json:"output,omitempty"`
	Metrics         []MetricStat `json:"metrics"`
}

// Summarize aggregates report into a Summary. outputPath is informational.
func Summarize(report *core.Report, outputPath string) Summary {
	s := Summary{Output: outputPath}
	if report == nil {
		return s
	}

	s.RunID = report.RunID
	s.Backend = report.Backend
	s.Prompts = len(report.Records)
	s.Skipped = report.Skipped
	s.TooLong = report.TooLong()
	s.Undefined = report.Undefined()
	s.GrammarFailures = report.GrammarFailures
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		s.Duration = report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String()
	}

	for _, name := range MetricNames {
		stat := MetricStat{Name: name}
		var sum float64
		for _, rec := range report.Records {
			v := metricValue(rec, name)
			if v == nil {
				continue
			}
			stat.Defined++
			sum += *v
			if stat.Min == nil || *v < *stat.Min {
				stat.Min = core.Float(*v)
			}
			if stat.Max == nil || *v > *stat.Max {
				stat.Max = core.Float(*v)
			}
		}
		if stat.Defined > 0 {
			stat.Mean = core.Float(core.Round3(sum / float64(stat.Defined)))
		}
		s.Metrics = append(s.Metrics, stat)
	}
	return s
}

func metricValue(rec core.ScoreRecord, name string) *float64 {
	switch name {
	case "PQS":
		return &rec.PQS
	case "G":
		return &rec.G
	case "F":
		return &rec.F
	case "C":
		return &rec.C
	case "CLS":
		return &rec.CLS
	case "RCS":
		return rec.RCS
	case "FMS":
		return rec.FMS
	case "BDS":
		return rec.BDS
	default:
		return nil
	}
}

// FormatSummary renders s in the requested format. FormatNone renders nothing.
func FormatSummary(format Format, s Summary) (string, error) {
	switch format {
	case FormatNone:
		return "", nil
	case FormatJSON:
		return marshalIndent(s)
	case FormatMarkdown:
		return renderSummary(s, true), nil
	default:
		return renderSummary(s, false), nil
	}
}
