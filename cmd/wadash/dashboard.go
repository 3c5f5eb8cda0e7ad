package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/dashboard"
	"github.com/zulandar/wadash/internal/notify"
	"go.uber.org/zap"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the web dashboard",
		Long:  "Launches the operator web dashboard for managing instances and scheduled messages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 8090)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath string, port int) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Dashboard.Port
	}

	feed := notify.NewFeed(notify.DefaultFeedSize)
	a.notifier.Add(feed)
	a.notifier.Add(notify.NewLogger(zap.L()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if expr := a.cfg.Digest.Cron; expr != "" {
		d := newDigest(a)
		if err := d.Start(ctx, expr); err != nil {
			return err
		}
		defer d.Stop()
	}

	deps := dashboard.Deps{
		Gateway:  a.gw,
		Feed:     feed,
		Notifier: a.notifier,
	}
	if a.journal != nil {
		deps.Journal = a.journal
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		Deps: deps,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
