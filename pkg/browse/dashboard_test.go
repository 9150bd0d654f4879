package browse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Plan    string
	Credits int
}

func newDashboard(t *testing.T, accounts map[string]*account, opts ...Option) *Dashboard {
	t.Helper()
	d, err := NewDashboard(DashboardConfig{
		Name:    "acct",
		Command: "account",
		Query: func(_ context.Context, userKey string) (any, error) {
			a, ok := accounts[userKey]
			if !ok {
				return nil, nil
			}
			return a, nil
		},
		Card: func(e any) string {
			a := e.(*account)
			return "Plan: " + a.Plan
		},
		Actions: []Action{
			{
				Name:  "upgrade",
				Label: "Upgrade",
				Handle: func(_ context.Context, e any, _ bool) (Result, error) {
					e.(*account).Plan = "pro"
					return Refresh{Message: "Upgraded."}, nil
				},
			},
			{
				Name:  "close",
				Label: "Close account",
				Row:   1,
				Handle: func(_ context.Context, _ any, confirmed bool) (Result, error) {
					if !confirmed {
						return Confirm{Prompt: "Really close your account?"}, nil
					}
					delete(accounts, "7")
					return Refresh{}, nil
				},
			},
		},
	}, opts...)
	require.NoError(t, err)
	return d
}

func TestDashboard_RenderAndRefresh(t *testing.T) {
	accounts := map[string]*account{"7": {Plan: "free", Credits: 3}}
	d := newDashboard(t, accounts)
	tp := &fakeTransport{}
	ctx := t.Context()

	require.NoError(t, d.HandleCommand(ctx, tp, openMsg()))
	first := tp.sent[0]
	assert.Equal(t, "Plan: free", first.text)
	upgradeData := findButton(t, first.kb, "Upgrade")
	rows := first.kb.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Close account", rows[1][0].Text)

	require.NoError(t, d.HandleCallback(ctx, tp, pressRef(upgradeData)))
	assert.Equal(t, "Upgraded.\n\nPlan: pro", tp.lastEdit(t).text)
}

func TestDashboard_MissingEntity(t *testing.T) {
	d := newDashboard(t, map[string]*account{})
	tp := &fakeTransport{}

	require.NoError(t, d.HandleCommand(t.Context(), tp, openMsg()))
	assert.Equal(t, "Entity not found.", tp.sent[0].text)
	assert.Nil(t, tp.sent[0].kb)
}

func TestDashboard_ConfirmThenNo(t *testing.T) {
	accounts := map[string]*account{"7": {Plan: "free"}}
	d := newDashboard(t, accounts)
	tp := &fakeTransport{}
	ctx := t.Context()

	data := encodeRef(ref{Name: d.Name(), Action: "close"})
	require.NoError(t, d.HandleCallback(ctx, tp, pressRef(data)))
	prompt := tp.lastEdit(t)
	assert.Equal(t, "Really close your account?", prompt.text)

	// "No" is a noop ref that leaves the prompt alone.
	noData := findButton(t, prompt.kb, "No")
	require.NoError(t, d.HandleCallback(ctx, tp, pressRef(noData)))
	assert.Len(t, tp.edited, 1)
	assert.Contains(t, accounts, "7")

	yesData := findButton(t, prompt.kb, "Yes")
	require.NoError(t, d.HandleCallback(ctx, tp, pressRef(yesData)))
	assert.NotContains(t, accounts, "7")
	assert.Equal(t, "Entity not found.", tp.lastEdit(t).text)
}

func TestDashboard_ForeignCallbackIgnored(t *testing.T) {
	d := newDashboard(t, map[string]*account{"7": {Plan: "free"}})
	tp := &fakeTransport{}

	require.NoError(t, d.HandleCallback(t.Context(), tp, pressRef(encodeRef(ref{Name: "other", Action: "upgrade"}))))
	assert.Empty(t, tp.answered)
	assert.Empty(t, tp.edited)
}
