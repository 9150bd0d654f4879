package widget

import (
	"fmt"
	"regexp"
)

// Validator checks a raw text answer before coercion. Validate returns a
// user-facing message on failure and the empty string on success.
type Validator interface {
	Validate(text string, th *Theme) string
}

type minLen int

func (m minLen) Validate(text string, th *Theme) string {
	if len([]rune(text)) < int(m) {
		return fmt.Sprintf(th.Errors.TooShort, int(m))
	}
	return ""
}

// MinLen requires at least n characters.
func MinLen(n int) Validator { return minLen(n) }

type maxLen int

func (m maxLen) Validate(text string, th *Theme) string {
	if len([]rune(text)) > int(m) {
		return fmt.Sprintf(th.Errors.TooLong, int(m))
	}
	return ""
}

// MaxLen allows at most n characters.
func MaxLen(n int) Validator { return maxLen(n) }

type pattern struct {
	re   *regexp.Regexp
	hint string
}

func (p pattern) Validate(text string, th *Theme) string {
	if !p.re.MatchString(text) {
		return fmt.Sprintf(th.Errors.InvalidFormat, p.hint)
	}
	return ""
}

// Pattern requires the answer to match expr. hint describes the expected
// shape in the rejection message. Panics on an invalid expression, which is
// a programming error surfaced at registration time.
func Pattern(expr, hint string) Validator {
	return pattern{re: regexp.MustCompile(expr), hint: hint}
}

// validateText runs the field's validators in declaration order and returns
// the first failure message, or "".
func validateText(text string, ctx *Context) string {
	for _, v := range ctx.Validators {
		if msg := v.Validate(text, ctx.Theme); msg != "" {
			return msg
		}
	}
	return ""
}
