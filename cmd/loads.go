package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fragview/internal/journal"
)

var loadsCmd = &cobra.Command{
	Use:   "loads",
	Short: "List recorded fragment loads",
	Long:  `Lists the most recent fragment loads recorded in the journal (journal_path), newest first.`,
	RunE:  runLoads,
}

func init() {
	loadsCmd.Flags().String("page", "", "only show loads for this page")
	loadsCmd.Flags().String("status", "", "only show loads with this status (loaded, failed, discarded, depth_exceeded)")
	loadsCmd.Flags().Int("limit", 20, "maximum number of entries")
	loadsCmd.Flags().Bool("summary", false, "print counts per status instead of entries")
	loadsCmd.Flags().Duration("prune", 0, "delete entries older than this duration before listing")
	rootCmd.AddCommand(loadsCmd)
}

func runLoads(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return fmt.Errorf("no journal configured; set journal_path in %s", cfgFile)
	}

	store, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		n, err := store.DeleteBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d entries\n", n)
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		sum, err := store.Summarize(ctx)
		if err != nil {
			return err
		}
		statuses := make([]string, 0, len(sum.Status))
		for s := range sum.Status {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Fprintf(out, "%-15s %d\n", s, sum.Status[s])
		}
		fmt.Fprintf(out, "%-15s %d\n", "total", sum.Total)
		return nil
	}

	filter := journal.QueryFilter{}
	filter.Page, _ = cmd.Flags().GetString("page")
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	entries, err := store.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No loads recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tPAGE\tURL\tDEPTH\tBYTES\tMS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.At.Local().Format(time.DateTime), e.Status, e.Page, e.URL, e.Depth, e.Bytes, e.DurationMS, e.Error)
	}
	return tw.Flush()
}
