package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/chat"
)

// Handler processes one inbound update.
type Handler func(ctx context.Context, u chat.Update) error

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// PollOption configures the long-poll loop.
type PollOption func(*poller)

// WithPollLogger sets the logger for dropped updates and transient
// fetch errors.
func WithPollLogger(l *slog.Logger) PollOption {
	return func(p *poller) {
		p.logger = l
	}
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) PollOption {
	return func(p *poller) {
		p.timeout = seconds
	}
}

type poller struct {
	bot     *Bot
	handler Handler
	logger  *slog.Logger
	timeout int
}

// Poll runs a getUpdates long-poll loop until the context is cancelled.
// Updates are handled one at a time so a user's messages keep their
// order; handler errors are logged, not fatal, since one bad update must
// not stop the bot.
func Poll(ctx context.Context, bot *Bot, handler Handler, opts ...PollOption) error {
	p := &poller{
		bot:     bot,
		handler: handler,
		logger:  logging.NewNop(),
		timeout: 30,
	}
	for _, opt := range opts {
		opt(p)
	}

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var batch []wireUpdate
		err := bot.call(ctx, "getUpdates", getUpdatesRequest{
			Offset:         offset,
			Timeout:        p.timeout,
			AllowedUpdates: []string{"message", "callback_query"},
		}, &batch)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			p.logger.Warn("getUpdates failed, backing off", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, wu := range batch {
			if wu.UpdateID >= offset {
				offset = wu.UpdateID + 1
			}
			u := mapUpdate(wu)
			if u.Message == nil && u.Callback == nil {
				continue
			}
			if err := p.handler(ctx, u); err != nil {
				p.logger.Error("update handling failed", "update_id", wu.UpdateID, "err", err)
			}
		}
	}
}
