package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/digest"
)

func newDigestCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the status digest now",
		Long: "Counts instances and scheduled messages by status, sends the summary to the " +
			"configured sinks and prunes journal entries past their retention.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// newDigest builds the digest job for a, pruning the journal when enabled.
func newDigest(a *app) *digest.Digest {
	var opts []digest.Option
	if a.journal != nil {
		opts = append(opts, digest.WithPruner(a.journal, a.cfg.Journal.Retention))
	}
	return digest.New(a.gw, a.notifier, opts...)
}

func runDigest(cmd *cobra.Command, configPath string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := newDigest(a).RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if r.Empty() {
		fmt.Fprintln(out, "Nothing to report.")
	} else {
		fmt.Fprintln(out, r.Format())
	}
	if a.journal != nil {
		fmt.Fprintf(out, "Pruned %d journal entries.\n", r.Pruned)
	}
	return nil
}
