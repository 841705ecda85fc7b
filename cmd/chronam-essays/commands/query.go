package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	contextWidth int
	tagLimit     int
)

func init() {
	concordanceCmd.Flags().IntVarP(&contextWidth, "width", "w", 0, "Characters of context on each side (default analysis.context_width).")
	tagCmd.Flags().IntVarP(&tagLimit, "limit", "n", 1, "Number of essays to tag, 0 for all.")
	rootCmd.AddCommand(countCmd, concordanceCmd, tagCmd)
}

var countCmd = &cobra.Command{
	Use:   "count <word>",
	Short: "Counts exact token matches of a word in every essay of analysis.input_file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.orch.LoadRecords()
		if err != nil {
			return err
		}
		analyzer, err := s.orch.NewAnalyzer()
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "LCCN", "Count"})
		for i, res := range analyzer.Search(records, args[0], s.cfg.Analysis.ContextWidth) {
			if res.Err != nil {
				t.AppendRow(table.Row{i + 1, res.Key, res.Err.Error()})
				continue
			}
			t.AppendRow(table.Row{i + 1, res.Key, res.Count})
		}
		t.Render()
		return nil
	},
}

var concordanceCmd = &cobra.Command{
	Use:   "concordance <word>",
	Short: "Prints every occurrence of a word with surrounding context, per essay.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		width := contextWidth
		if width <= 0 {
			width = s.cfg.Analysis.ContextWidth
		}

		records, err := s.orch.LoadRecords()
		if err != nil {
			return err
		}
		analyzer, err := s.orch.NewAnalyzer()
		if err != nil {
			return err
		}

		for _, res := range analyzer.Search(records, args[0], width) {
			fmt.Printf("== %s\n", res.Key)
			if res.Err != nil {
				fmt.Printf("error: %v\n", res.Err)
				continue
			}
			fmt.Println(res.Concordance.Text())
		}
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Prints part-of-speech tags for the first essays of analysis.input_file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.orch.LoadRecords()
		if err != nil {
			return err
		}
		analyzer, err := s.orch.NewAnalyzer()
		if err != nil {
			return err
		}

		for _, res := range analyzer.TagRecords(records, tagLimit) {
			t := newTable()
			t.SetTitle(res.Key)
			t.AppendHeader(table.Row{"Token", "Tag"})
			if res.Err != nil {
				t.AppendRow(table.Row{res.Err.Error(), ""})
			}
			for _, tok := range res.Tags {
				t.AppendRow(table.Row{tok.Text, tok.Tag})
			}
			t.Render()
		}
		return nil
	},
}
