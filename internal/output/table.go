package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/promptlens/promptlens/internal/ailink/prompt"
)

func renderSummary(s Summary, markdown bool) string {
	run := table.NewWriter()
	run.SetStyle(table.StyleRounded)
	run.AppendHeader(table.Row{"Run", "Value"})
	run.AppendRow(table.Row{"Run ID", s.RunID})
	run.AppendRow(table.Row{"Backend", s.Backend})
	run.AppendRow(table.Row{"Prompts", s.Prompts})
	run.AppendRow(table.Row{"Skipped", s.Skipped})
	run.AppendRow(table.Row{"Too long", s.TooLong})
	run.AppendRow(table.Row{"Undefined", s.Undefined})
	if s.GrammarFailures > 0 {
		run.AppendRow(table.Row{"Grammar failures", s.GrammarFailures})
	}
	if s.Duration != "" {
		run.AppendRow(table.Row{"Duration", s.Duration})
	}
	if s.Output != "" {
		run.AppendRow(table.Row{"Output", s.Output})
	}

	metrics := table.NewWriter()
	metrics.SetStyle(table.StyleRounded)
	metrics.AppendHeader(table.Row{"Metric", "Mean", "Min", "Max", "Defined"})
	metrics.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, m := range s.Metrics {
		metrics.AppendRow(table.Row{
			m.Name,
			formatScore(m.Mean),
			formatScore(m.Min),
			formatScore(m.Max),
			fmt.Sprintf("%d/%d", m.Defined, s.Prompts),
		})
	}

	if markdown {
		var sb strings.Builder
		sb.WriteString("## Analysis summary\n\n")
		sb.WriteString(run.RenderMarkdown())
		sb.WriteString("\n\n### Metrics\n\n")
		sb.WriteString(metrics.RenderMarkdown())
		sb.WriteString("\n")
		return sb.String()
	}
	return run.Render() + "\n" + metrics.Render()
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

// FormatProbes renders the active judge instructions.
func FormatProbes(format Format, prompts []*prompt.Prompt) (string, error) {
	if format == FormatNone {
		return "", nil
	}
	if format == FormatJSON {
		configs := make([]prompt.Config, 0, len(prompts))
		for _, p := range prompts {
			if p != nil {
				configs = append(configs, p.Config)
			}
		}
		return marshalIndent(configs)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Slug", "Probe", "Mode", "Instruction"})
	if format == FormatTable {
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 72}})
	}
	for _, p := range prompts {
		if p == nil {
			continue
		}
		t.AppendRow(table.Row{p.Config.Slug, string(p.Config.Probe), p.Config.Mode, p.Instruction()})
	}

	if format == FormatMarkdown {
		return t.RenderMarkdown(), nil
	}
	return t.Render(), nil
}
