package widget

// NavTheme holds the glyphs and labels used by paging and multi-view
// widgets.
type NavTheme struct {
	Prev      string
	Next      string
	PrevLabel string
	NextLabel string
	Back      string
	BackArrow string
}

// SelectionTheme holds the state glyphs for selection widgets.
type SelectionTheme struct {
	Checked     string
	Unchecked   string
	RadioOn     string
	RadioOff    string
	ToggleOn    string
	ToggleOff   string
	TabActive   string
	TabInactive string
}

// ActionTheme holds the labels for generic confirmation and control
// buttons.
type ActionTheme struct {
	Done       string
	OK         string
	Yes        string
	No         string
	Cancel     string
	RemoveLast string
	Decrement  string
	Increment  string
}

// DisplayTheme holds presentation strings shared across widgets and
// controllers.
type DisplayTheme struct {
	NoneValue      string
	BoolTrue       string
	BoolFalse      string
	NoOptions      string
	EntityNotFound string
	DisabledDate   string
	// DateFormat is a Go time layout.
	DateFormat string
	// PageFormat expects two integer verbs: current page and total.
	PageFormat string
}

// ErrorTheme holds every user-facing rejection message. Entries with
// printf verbs are filled by the rejecting widget.
type ErrorTheme struct {
	UseButtons    string
	UseButton     string
	SendText      string
	SendPhoto     string
	SendDocument  string
	SendLocation  string
	SendVideo     string
	SendVoice     string
	SendContact   string
	SendNumber    string
	UseCalendar   string
	UseTimePicker string
	UseSlider     string
	EnterPin      string
	SendMedia     string
	SelectDays    string
	SelectOption  string
	SelectRating  string
	FlowActive    string

	TooShort      string
	TooLong       string
	InvalidFormat string
	MaxItems      string
	MinSelect     string
	RangeError    string
	MaxReached    string
	MinRequired   string
}

// Theme bundles every customizable string a widget renders. Flows receive
// a theme at registration; widgets never construct one themselves.
type Theme struct {
	Nav       NavTheme
	Selection SelectionTheme
	Action    ActionTheme
	Display   DisplayTheme
	Errors    ErrorTheme
}

// DefaultTheme returns the stock theme.
func DefaultTheme() *Theme {
	return &Theme{
		Nav: NavTheme{
			Prev:      "◀",
			Next:      "▶",
			PrevLabel: "◀️ Prev",
			NextLabel: "Next ▶️",
			Back:      "Back",
			BackArrow: "◀ Back",
		},
		Selection: SelectionTheme{
			Checked:     "✅",
			Unchecked:   "⬜",
			RadioOn:     "🔘",
			RadioOff:    "⚪",
			ToggleOn:    "🟢",
			ToggleOff:   "🔴",
			TabActive:   "🔘",
			TabInactive: "⚪",
		},
		Action: ActionTheme{
			Done:       "Done ✓",
			OK:         "OK",
			Yes:        "Yes",
			No:         "No",
			Cancel:     "Cancelled.",
			RemoveLast: "Remove last",
			Decrement:  "−",
			Increment:  "+",
		},
		Display: DisplayTheme{
			NoneValue:      "(not set)",
			BoolTrue:       "Yes",
			BoolFalse:      "No",
			NoOptions:      "(no options available)",
			EntityNotFound: "Entity not found.",
			DisabledDate:   "·",
			DateFormat:     "Jan 02, 2006",
			PageFormat:     "%d/%d",
		},
		Errors: ErrorTheme{
			UseButtons:    "Please use the buttons above.",
			UseButton:     "Please use the button above.",
			SendText:      "Please send a text message.",
			SendPhoto:     "Please send a photo.",
			SendDocument:  "Please send a document.",
			SendLocation:  "Please share a location.",
			SendVideo:     "Please send a video.",
			SendVoice:     "Please send a voice message.",
			SendContact:   "Please use the Share Contact button.",
			SendNumber:    "Please enter a number.",
			UseCalendar:   "Please use the calendar above.",
			UseTimePicker: "Please use the time picker above.",
			UseSlider:     "Please use the slider above.",
			EnterPin:      "Please enter all digits first.",
			SendMedia:     "Please send a photo, document, or video.",
			SelectDays:    "Please select at least one day.",
			SelectOption:  "Please select an option first.",
			SelectRating:  "Please select a rating first.",
			FlowActive:    "Already in /%s. Send /cancel to abort.",

			TooShort:      "Too short (min %d chars)",
			TooLong:       "Too long (max %d chars)",
			InvalidFormat: "Invalid format (expected %s)",
			MaxItems:      "Max %d items",
			MinSelect:     "Select at least %d",
			RangeError:    "Must be between %v and %v.",
			MaxReached:    "Maximum %d items reached. Press Done.",
			MinRequired:   "Please add at least %d items.",
		},
	}
}
