package browse

import "encoding/json"

// refLimit is the transport ceiling for callback payloads. Telegram allows
// 64 bytes; names and action identifiers must stay short enough to fit.
const refLimit = 64

// ref is the compact callback payload of browse-style controllers.
type ref struct {
	Name   string `json:"b"`
	Action string `json:"a"`
	Entity int64  `json:"e,omitempty"`
	Page   int    `json:"p,omitempty"`
}

func encodeRef(r ref) string {
	b, _ := json.Marshal(r)
	return string(b)
}

// decodeRef parses a controller callback. ok is false for foreign data,
// including widget callbacks, which carry a "flow" key instead of "b".
func decodeRef(data string) (ref, bool) {
	var r ref
	if err := json.Unmarshal([]byte(data), &r); err != nil || r.Name == "" {
		return ref{}, false
	}
	return r, true
}
