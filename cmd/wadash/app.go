package main

import (
	"context"
	"fmt"
	"io"

	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/gateway"
	"github.com/zulandar/wadash/internal/journal"
	"github.com/zulandar/wadash/internal/logging"
	"github.com/zulandar/wadash/internal/notify"
	"github.com/zulandar/wadash/internal/notify/discord"
	"github.com/zulandar/wadash/internal/notify/slack"
	"go.uber.org/zap"
)

// app bundles what every command needs after loading the config.
type app struct {
	cfg      *config.Config
	gw       gateway.Gateway
	journal  *journal.Journal
	notifier *notify.Fanout
	closers  []func()
}

// openApp loads the config, installs logging and builds the gateway client
// and the notice sinks. Callers must Close the app.
func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg, gw: gateway.FromConfig(cfg.Gateway)}

	restore, err := logging.Install(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	a.closers = append(a.closers, restore)

	a.notifier = notify.NewFanout()
	if cfg.Journal.Enabled() {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journal = j
		a.notifier.Add(j)
		a.closers = append(a.closers, func() { _ = j.Close() })
	}

	chatSinks, err := newChatSinks(cfg.Notify)
	if err != nil {
		a.Close()
		return nil, err
	}
	for _, s := range chatSinks {
		a.notifier.Add(s)
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newChatSinks builds the configured Slack and Discord sinks. They only
// receive error notices unless all_levels is set.
func newChatSinks(cfg config.NotifyConfig) ([]notify.Notifier, error) {
	var sinks []notify.Notifier
	if cfg.Slack.BotToken != "" {
		s, err := slack.New(slack.SinkOpts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
		zap.L().Debug("slack notices enabled", zap.String("channel", cfg.Slack.ChannelID))
	}
	if cfg.Discord.BotToken != "" {
		s, err := discord.New(discord.SinkOpts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
		zap.L().Debug("discord notices enabled", zap.String("channel", cfg.Discord.ChannelID))
	}
	if !cfg.AllLevels {
		for i, s := range sinks {
			sinks[i] = notify.ErrorsOnly(s)
		}
	}
	return sinks, nil
}

// printer writes notices to the terminal.
func printer(w io.Writer) notify.Notifier {
	return notify.Func(func(_ context.Context, n notify.Notice) error {
		if n.Level == notify.LevelError {
			_, err := fmt.Fprintf(w, "Error: %s\n", n.Message)
			return err
		}
		_, err := fmt.Fprintln(w, n.Message)
		return err
	})
}
