/*
Package tgflow is a declarative framework for building multi-step Telegram
bot conversations. A flow is described as an ordered list of fields, each
rendered by a widget (text input, selects, pickers, counters, media
uploads), and the engine drives prompting, validation, inline-keyboard
callbacks, /back and /skip, progress display, and the finish step.

State lives outside the process: every flow instance is serialized into a
pluggable session store between updates, so a bot survives restarts and
can run as multiple replicas when a distributed locker is configured.

# Concept

The App routes inbound updates. Commands launch flows or controllers,
free text feeds the active flow's current widget, and button presses are
dispatched by callback namespace. Widgets return one of four results
(stay, advance, reject, no-op) and the flow machine turns those into
message edits and slot writes. Alongside flows, browse, search, dashboard
and settings controllers cover paginated entity lists, action panels and
preference editing without hand-written update handling.

# Usage

Define a flow, register it, and feed updates from your transport:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tgflow"
		"github.com/aretw0/tgflow/pkg/adapters/telegram"
		"github.com/aretw0/tgflow/pkg/flow"
		"github.com/aretw0/tgflow/pkg/widget"
	)

	func main() {
		bot, err := telegram.New("TOKEN")
		if err != nil {
			log.Fatal(err)
		}

		app := tgflow.New(bot)
		_, err = app.RegisterFlow(flow.Definition{
			Name:    "order",
			Command: "order",
			Fields: []flow.Field{
				{Name: "item", Widget: &widget.Text{Ask: "What would you like?"}},
				{Name: "qty", Widget: &widget.Counter{Ask: "How many?", Min: 1, Max: 10}},
			},
			Finish: func(ctx context.Context, v flow.Values) (flow.Outcome, error) {
				return flow.Outcome{Text: "Order placed!"}, nil
			},
		})
		if err != nil {
			log.Fatal(err)
		}

		log.Fatal(telegram.Poll(context.Background(), bot, app.HandleUpdate))
	}
*/
package tgflow
