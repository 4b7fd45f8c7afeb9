package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlens/promptlens/internal/ailink/prompt"
	"github.com/promptlens/promptlens/internal/config"
	"github.com/promptlens/promptlens/internal/core/judge"
	"github.com/promptlens/promptlens/internal/output"
)

var (
	probesMode   string
	probesFormat string
	probesOut    string
	probesOutDir string
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the judge instructions",
	Long: `List the instruction sent to the judge for each probe (relevance, formality,
bias). Instructions come from the embedded set, overlaid by judge.prompts_dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(probesFormat)
		if err != nil {
			return err
		}

		cfg := config.GetConfig()
		if cfg == nil {
			return errors.New("config not loaded")
		}

		reg, err := buildPromptRegistry(cfg)
		if err != nil {
			return fmt.Errorf("load judge instructions: %w", err)
		}

		prompts, err := selectProbes(reg, probesMode)
		if err != nil {
			return err
		}

		rendered, err := output.FormatProbes(format, prompts)
		if err != nil {
			return err
		}

		outPath, err := resolveSinkPath(probesOut, probesOutDir, "probes", format)
		if err != nil {
			return err
		}
		sink, err := openSink(outPath, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

// selectProbes returns the instructions for mode in probe order; "all"
// returns every registered instruction.
func selectProbes(reg prompt.Registry, mode string) ([]*prompt.Prompt, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "all" {
		return reg.List(), nil
	}

	parsed, err := judge.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	instructions, err := prompt.Instructions(reg, string(parsed))
	if err != nil {
		return nil, err
	}

	result := make([]*prompt.Prompt, 0, len(prompt.Probes))
	for _, probe := range prompt.Probes {
		result = append(result, instructions[probe])
	}
	return result, nil
}

func init() {
	rootCmd.AddCommand(probesCmd)

	probesCmd.Flags().StringVar(&probesMode, "mode", "all", "Instruction set: local, remote or all")
	probesCmd.Flags().StringVar(&probesFormat, "format", "table", "Output format: table, markdown, json")
	probesCmd.Flags().StringVar(&probesOut, "out", "", "Write to file instead of stdout")
	probesCmd.Flags().StringVar(&probesOutDir, "out-dir", "", "Write probes.<ext> into this directory")
}
