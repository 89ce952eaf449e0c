package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alvmarrod/triangle-weaver/internal/config"
	"github.com/alvmarrod/triangle-weaver/internal/storage"
	"github.com/spf13/cobra"
)

var errNoHistoryDB = errors.New("no history database configured (use --history-db or history_db_path)")

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, _, err := config.Resolve(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			dbPath := cfg.HistoryDBPath
			if cmd.Flags().Changed("history-db") {
				dbPath, _ = cmd.Flags().GetString("history-db")
			}
			if dbPath == "" {
				return errNoHistoryDB
			}

			store, err := storage.NewStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer store.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %s  pages=%d/%d links=%d failed=%d triangles=%d reason=%s seeds=%s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.RunID,
					run.PagesCrawled, run.MaxPages, run.LinksRecorded, run.PagesFailed,
					run.TrianglesFound, run.TerminationReason, strings.Join(run.Seeds, ","))
			}
			return nil
		},
	}

	cmd.Flags().String("history-db", "", "sqlite database written by previous runs")
	cmd.Flags().Int("limit", 20, "maximum number of runs to list")

	return cmd
}
