package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/journal"
)

func newActivityCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent operator activity",
		Long:  "Lists the most recent notices recorded in the activity journal, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd, configPath, limit)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultLimit, "number of entries to show")
	return cmd
}

func runActivity(cmd *cobra.Command, configPath string, limit int) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.journal == nil {
		return fmt.Errorf("activity journal is disabled (set journal.driver in %s)", configPath)
	}

	entries, err := a.journal.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLEVEL\tACTION\tTARGET\tMESSAGE")
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Level, e.Action, target, e.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts, err := a.journal.CountByLevel(cmd.Context(), time.Now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLast 24h: %d success, %d error, %d info\n",
		counts["success"], counts["error"], counts["info"])
	return nil
}
