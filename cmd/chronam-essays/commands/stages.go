package commands

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectCmd, fetchCmd, analyzeCmd, runCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects item links from the listing pages into collector.output_file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.orch.Collect(s.ctx)
		if stats != nil {
			t := newTable()
			t.AppendHeader(table.Row{"Pages", "Failed pages", "Links", "Stopped"})
			t.AppendRow(table.Row{stats.TotalPages, stats.FailedPages, stats.TotalLinks, stats.StoppedReason})
			t.Render()
		}
		return err
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches the JSON record of every collected link into harvester.output_file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.orch.Fetch(s.ctx)
		if stats != nil {
			t := newTable()
			stored := "-"
			if stats.Stored >= 0 {
				stored = strconv.Itoa(stats.Stored)
			}
			t.AppendHeader(table.Row{"Attempted", "Fetched", "Failed", "New", "Updated", "Unchanged", "Stored", "Stopped"})
			t.AppendRow(table.Row{
				stats.Attempted, stats.Succeeded, stats.Failed,
				stats.New, stats.Updated, stats.Unchanged, stored, stats.StoppedReason,
			})
			t.Render()
		}
		return err
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Strips essay markup and extracts people and organizations into analysis.output_file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.orch.Analyze(s.ctx)
		if stats != nil {
			t := newTable()
			t.AppendHeader(table.Row{"Records", "Analyzed", "Markup failures", "NLP failures", "Non-English", "Stopped"})
			t.AppendRow(table.Row{
				stats.Total, stats.Analyzed, stats.NormalizeFailures,
				stats.EngineFailures, stats.NonEnglish, stats.StoppedReason,
			})
			t.Render()
		}
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs collect, fetch and analyze in sequence.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.orch.Run(s.ctx)
	},
}
