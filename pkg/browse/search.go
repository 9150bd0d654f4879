package browse

import (
	"context"
	"fmt"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/session"
)

// SearchConfig declares a text-search entry point over a browse view. The
// embedded Config's Query receives the typed text in Query.Search.
type SearchConfig struct {
	Config
	// Prompt is sent when the command opens the search.
	Prompt string
}

// Search prompts for a query, then renders matches with the full browse
// keyboard. Pagination and actions run through the inner browser.
type Search struct {
	*Browse
	prompt string
}

// NewSearch validates the config and builds the controller.
func NewSearch(cfg SearchConfig, mgr *session.Manager, opts ...Option) (*Search, error) {
	inner, err := New(cfg.Config, mgr, opts...)
	if err != nil {
		return nil, err
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "What are you looking for?"
	}
	return &Search{Browse: inner, prompt: prompt}, nil
}

// HandleCommand opens a fresh search session and asks for the query. The
// session's existence is what routes subsequent plain text here.
func (s *Search) HandleCommand(ctx context.Context, tp ports.Transport, msg *chat.Message) error {
	if err := s.sessions.Set(ctx, msg.UserKey(), browseSession{}); err != nil {
		return err
	}
	_, err := tp.SendMessage(ctx, msg.ChatID, s.prompt, nil)
	return err
}

// HandleText consumes a typed query while a search session is active.
// Returns false when the text is not for this controller: no session, or a
// command-shaped message.
func (s *Search) HandleText(ctx context.Context, tp ports.Transport, msg *chat.Message) (bool, error) {
	if msg.Text == "" || msg.Text[0] == '/' {
		return false, nil
	}
	userKey := msg.UserKey()
	sess, ok, err := s.sessions.Get(ctx, userKey)
	if err != nil || !ok {
		return false, err
	}

	sess.Search, sess.Page = msg.Text, 0
	text, kb, n, err := s.render(ctx, &sess)
	if err != nil {
		return true, err
	}
	if err := s.sessions.Set(ctx, userKey, sess); err != nil {
		return true, err
	}
	if n == 0 {
		text = fmt.Sprintf("No results for %q.", msg.Text)
		kb = nil
	}
	_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
	return true, err
}
