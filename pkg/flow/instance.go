package flow

import (
	"encoding/json"

	"github.com/aretw0/tgflow/pkg/widget"
)

// Instance is the persisted state of one user's run through a flow. It is
// a small JSON document; every transition operates on a copy so a failed
// save never leaves a half-applied state behind.
type Instance struct {
	// Slots holds answered fields. Key presence means answered; a nil
	// value means explicitly skipped.
	Slots map[string]any `json:"slots"`

	// Step indexes the active field within the prompt sequence.
	Step int `json:"step"`

	// Entered flips once the first prompt has been rendered.
	Entered bool `json:"entered"`

	// MessageID tracks the prompt message for edit and delete display
	// modes. Zero when untracked.
	MessageID int64 `json:"msg_id,omitempty"`

	// Options caches resolved dynamic options per field so callbacks
	// validate against what the user actually saw.
	Options map[string][]widget.Option `json:"opts,omitempty"`

	// SummaryPending marks the review screen as shown and awaiting
	// confirmation.
	SummaryPending bool `json:"summary,omitempty"`
}

// NewInstance returns an empty, not-yet-entered instance.
func NewInstance() *Instance {
	return &Instance{Slots: make(map[string]any)}
}

// DecodeInstance parses a persisted instance.
func DecodeInstance(data []byte) (*Instance, error) {
	var in Instance
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if in.Slots == nil {
		in.Slots = make(map[string]any)
	}
	return &in, nil
}

// Encode serializes the instance for the session store.
func (in *Instance) Encode() ([]byte, error) {
	return json.Marshal(in)
}

// clone returns a deep enough copy for transition-then-save semantics: the
// maps are fresh, slot values are shared.
func (in *Instance) clone() *Instance {
	cp := *in
	cp.Slots = make(map[string]any, len(in.Slots))
	for k, v := range in.Slots {
		cp.Slots[k] = v
	}
	if in.Options != nil {
		cp.Options = make(map[string][]widget.Option, len(in.Options))
		for k, v := range in.Options {
			cp.Options[k] = v
		}
	}
	return &cp
}

// values snapshots the answered slots.
func (in *Instance) values() Values {
	out := make(Values, len(in.Slots))
	for k, v := range in.Slots {
		out[k] = v
	}
	return out
}
