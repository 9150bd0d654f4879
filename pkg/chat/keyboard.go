package chat

// Button is a single keyboard button. Data carries the callback payload for
// inline keyboards; RequestContact marks a reply-keyboard contact button.
type Button struct {
	Text           string
	Data           string
	RequestContact bool
}

// Keyboard is a platform-neutral keyboard. Inline keyboards attach to a
// message and emit callbacks; reply keyboards replace the user's input panel
// and cannot be attached to an edited message.
type Keyboard struct {
	rows    [][]Button
	current []Button
	inline  bool

	resize  bool
	oneTime bool
}

// NewInline returns an empty inline keyboard.
func NewInline() *Keyboard {
	return &Keyboard{inline: true}
}

// NewReply returns an empty reply keyboard.
func NewReply() *Keyboard {
	return &Keyboard{}
}

// Add appends a button to the row under construction.
func (k *Keyboard) Add(b Button) *Keyboard {
	k.current = append(k.current, b)
	return k
}

// Text appends an inline button with the given label and callback data.
func (k *Keyboard) Text(label, data string) *Keyboard {
	return k.Add(Button{Text: label, Data: data})
}

// Row closes the row under construction. Empty rows are dropped.
func (k *Keyboard) Row() *Keyboard {
	if len(k.current) > 0 {
		k.rows = append(k.rows, k.current)
		k.current = nil
	}
	return k
}

// Resize marks a reply keyboard as auto-sized.
func (k *Keyboard) Resize() *Keyboard {
	k.resize = true
	return k
}

// OneTime marks a reply keyboard as one-shot.
func (k *Keyboard) OneTime() *Keyboard {
	k.oneTime = true
	return k
}

// Rows closes any open row and returns the button grid.
func (k *Keyboard) Rows() [][]Button {
	k.Row()
	return k.rows
}

// IsInline reports whether this keyboard attaches to a message. Renderers
// use it to detect edit-incompatible reply keyboards.
func (k *Keyboard) IsInline() bool { return k.inline }

// IsResize reports whether a reply keyboard requested auto-sizing.
func (k *Keyboard) IsResize() bool { return k.resize }

// IsOneTime reports whether a reply keyboard is one-shot.
func (k *Keyboard) IsOneTime() bool { return k.oneTime }

// Empty reports whether the keyboard has no buttons at all.
func (k *Keyboard) Empty() bool {
	return len(k.rows) == 0 && len(k.current) == 0
}
