package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/promptlens/promptlens/internal/config"
	"github.com/promptlens/promptlens/internal/core/store"
	errwrap "github.com/promptlens/promptlens/internal/errors"
	"github.com/promptlens/promptlens/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the judge response cache",
	Long: `Inspect or purge cached judge completions. The cache is only written when
cache.judge_ttl is greater than zero.`,
}

var (
	cacheStatsOutput string
	cacheStatsOut    string

	cacheClearAll    bool
	cacheClearYes    bool
	cacheClearDryRun bool
)

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show judge cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cacheStatsOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		db, err := openCacheStore(cmd.Context(), config.GetConfig())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		stats, err := db.JudgeCacheStats(cmd.Context())
		if err != nil {
			return err
		}

		sink, err := openSink(cacheStatsOut, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		_, err = fmt.Fprint(sink.writer, ascii.DrawBox(renderCacheStats(stats), 0))
		return err
	},
}

// openCacheStore opens the judge cache store, reporting failures as database
// envelopes.
func openCacheStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, errwrap.WrapDatabaseError(ctx, err, "cannot open judge cache store")
	}
	return db, nil
}

func renderCacheStats(stats *store.JudgeCacheStats) string {
	lines := []string{"Judge Cache", ""}
	if stats == nil || stats.Entries == 0 {
		lines = append(lines, "(no cached judge responses)")
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		fmt.Sprintf("entries=%d expired=%d hits=%d", stats.Entries, stats.Expired, stats.Hits),
		"",
	)
	labels := make([]string, 0, len(stats.Drivers))
	for label := range stats.Drivers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%s: %d", label, stats.Drivers[label]))
	}
	return strings.Join(lines, "\n")
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Purge judge cache entries",
	Long:  "Purge expired judge cache entries, or every entry with --all.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cacheClearAll && !cacheClearYes && !cacheClearDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

		db, err := openCacheStore(cmd.Context(), config.GetConfig())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		out := cmd.OutOrStdout()
		if cacheClearDryRun {
			stats, err := db.JudgeCacheStats(cmd.Context())
			if err != nil {
				return err
			}
			matched := stats.Expired
			if cacheClearAll {
				matched = stats.Entries
			}
			_, err = fmt.Fprintf(out, "Would purge %d judge cache entries\n", matched)
			return err
		}

		removed, err := db.PurgeJudgeCache(cmd.Context(), cacheClearAll)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Purged %d judge cache entries\n", removed)
		return err
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)

	cacheStatsCmd.Flags().StringVar(&cacheStatsOutput, "output", "table", "Output format: table, json")
	cacheStatsCmd.Flags().StringVar(&cacheStatsOut, "out", "", "Write to file instead of stdout")

	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "Purge every entry, not only expired ones")
	cacheClearCmd.Flags().BoolVar(&cacheClearYes, "yes", false, "Confirm --all")
	cacheClearCmd.Flags().BoolVar(&cacheClearDryRun, "dry-run", false, "Report what would be purged")
}
