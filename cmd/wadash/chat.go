package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat lookup commands",
	}

	cmd.AddCommand(newChatListCmd())
	return cmd
}

func newChatListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <instance>",
		Short: "List chats of an instance",
		Long:  "Lists the chats an instance can send to. Use the ID column as --chat when scheduling.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatList(cmd, configPath, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runChatList(cmd *cobra.Command, configPath, instance string) error {
	a, composer, err := openComposer(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := composer.SelectInstance(cmd.Context(), instance); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	chats := composer.State().Chats
	if len(chats) == 0 {
		fmt.Fprintf(out, "No chats found for %s.\n", instance)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, c := range chats {
		fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
	}
	return w.Flush()
}
