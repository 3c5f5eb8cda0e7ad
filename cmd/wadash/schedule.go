package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/confirm"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/schedule"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"sched"},
		Short:   "Scheduled message commands",
	}

	cmd.AddCommand(newScheduleListCmd())
	cmd.AddCommand(newScheduleCreateCmd())
	cmd.AddCommand(newScheduleDeleteCmd())
	return cmd
}

// openComposer opens the app and a schedule composer whose notices are
// also printed to the command's output.
func openComposer(cmd *cobra.Command, configPath string) (*app, *schedule.Composer, error) {
	a, err := openApp(configPath)
	if err != nil {
		return nil, nil, err
	}
	a.notifier.Add(printer(cmd.OutOrStdout()))
	return a, schedule.NewComposer(a.gw, a.notifier), nil
}

func newScheduleListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleList(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runScheduleList(cmd *cobra.Command, configPath string) error {
	a, composer, err := openComposer(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := composer.Refresh(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rows := composer.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No scheduled messages.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHAT\tINSTANCE\tWHEN\tSTATUS\tREPEAT\tMESSAGE")
	for _, r := range rows {
		when := r.Date
		if r.Time != "" {
			when += " " + r.Time
		}
		repeat := r.RepeatTag
		if repeat == "" {
			repeat = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Instance, when, r.Status, repeat, truncate(r.Body, 40))
	}
	return w.Flush()
}

func newScheduleCreateCmd() *cobra.Command {
	var (
		configPath string
		draft      schedule.Draft
		msgType    string
		repeat     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a message",
		Long: "Schedules a text, image or document message for a chat. --at accepts " +
			"RFC 3339 timestamps, local times like 2025-06-01T09:30, and most common date formats; " +
			"the latter are sent to the gateway as RFC 3339.",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Type = models.MessageType(msgType)
			draft.Repeat = models.Repeat(repeat)
			return runScheduleCreate(cmd, configPath, draft)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&draft.InstanceName, "instance", "", "connected instance to send from (required)")
	cmd.Flags().StringVar(&draft.ChatID, "chat", "", "chat id to send to (required, see 'wadash chat list')")
	cmd.Flags().StringVar(&msgType, "type", string(models.TypeText), "message type (text, image, document)")
	cmd.Flags().StringVar(&draft.Content, "content", "", "message text (text messages)")
	cmd.Flags().StringVar(&draft.FileURL, "file-url", "", "media URL (image and document messages)")
	cmd.Flags().StringVar(&draft.FileName, "file-name", "", "media file name")
	cmd.Flags().StringVar(&draft.ScheduledTime, "at", "", "when to send (required)")
	cmd.Flags().StringVar(&repeat, "repeat", string(models.RepeatNone), "recurrence (none, daily, weekly, monthly)")
	cmd.MarkFlagRequired("instance")
	cmd.MarkFlagRequired("chat")
	cmd.MarkFlagRequired("at")
	return cmd
}

func runScheduleCreate(cmd *cobra.Command, configPath string, draft schedule.Draft) error {
	a, composer, err := openComposer(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	composer.UpdateDraft(func(d *schedule.Draft) { *d = draft })
	err = composer.Submit(cmd.Context())

	var ve *schedule.ValidationError
	if errors.As(err, &ve) {
		out := cmd.OutOrStdout()
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(out, "  %s: %s\n", f, ve.Fields[f])
		}
		return fmt.Errorf("invalid schedule")
	}
	return err
}

func newScheduleDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a scheduled message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleDelete(cmd, configPath, args[0], yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runScheduleDelete(cmd *cobra.Command, configPath, id string, yes bool) error {
	a, composer, err := openComposer(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	err = composer.Delete(cmd.Context(), id, confirmerFor(cmd, yes))
	if errors.Is(err, confirm.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	return err
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
