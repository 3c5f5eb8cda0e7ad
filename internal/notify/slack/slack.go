// Package slack posts notices to a Slack channel.
package slack

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/wadash/internal/notify"
	"go.uber.org/zap"
)

// maxRetries is the max number of retries for rate-limited API calls.
const maxRetries = 3

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Sink implements notify.Notifier for Slack.
type Sink struct {
	client    slackClient
	channelID string
}

// SinkOpts holds parameters for creating a Slack Sink.
type SinkOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Sink.
func New(opts SinkOpts) (*Sink, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Sink{client: client, channelID: opts.ChannelID}, nil
}

var _ notify.Notifier = (*Sink)(nil)

// Notify posts n as a colored attachment.
func (s *Sink) Notify(ctx context.Context, n notify.Notice) error {
	options := []slackapi.MsgOption{
		slackapi.MsgOptionText(n.Message, false),
		slackapi.MsgOptionAttachments(noticeToAttachment(n)),
	}
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := s.client.PostMessage(s.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// noticeToAttachment converts a Notice to a Slack Attachment.
func noticeToAttachment(n notify.Notice) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    n.Message,
		Color:    n.Level.Color(),
		Fallback: n.Message,
	}
	if !n.At.IsZero() {
		att.Footer = n.At.Format(time.RFC1123)
	}
	if n.Action != "" {
		att.Fields = append(att.Fields, slackapi.AttachmentField{Title: "Action", Value: n.Action, Short: true})
	}
	if n.Target != "" {
		att.Fields = append(att.Fields, slackapi.AttachmentField{Title: "Target", Value: n.Target, Short: true})
	}
	return att
}

// retryOnRateLimit calls fn and retries with backoff on Slack rate limit errors.
// Non-rate-limit errors are returned immediately.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err
		}

		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}
		zap.L().Debug("slack: rate limited", zap.Int("attempt", attempt+1), zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}
