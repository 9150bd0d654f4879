package widget

// Result is the outcome a widget returns for one inbound event. The set is
// closed: Stay, Advance, Reject and NoOp are the only implementations, and
// dispatchers switch exhaustively over them.
type Result interface {
	isResult()
}

// Stay keeps the field active and replaces its stored working value. The
// renderer redraws the widget in place.
type Stay struct {
	Value any
}

// Advance commits Value to the field and moves the flow forward. Summary is
// the short human line echoed for the committed choice.
type Advance struct {
	Value   any
	Summary string
}

// Reject refuses the event with a user-facing message and leaves the field
// untouched.
type Reject struct {
	Message string
}

// NoOp ignores the event entirely. Used for decorative buttons.
type NoOp struct{}

func (Stay) isResult()    {}
func (Advance) isResult() {}
func (Reject) isResult()  {}
func (NoOp) isResult()    {}
