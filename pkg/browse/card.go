package browse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/tgflow/pkg/widget"
)

// defaultCard renders an entity as sorted "Label: value" lines by decoding
// its exported fields into a map. Controllers use it when no Card func is
// configured.
func defaultCard(entity any, th *widget.Theme) string {
	fields := make(map[string]any)
	if err := mapstructure.Decode(entity, &fields); err != nil || len(fields) == 0 {
		return fmt.Sprintf("%v", entity)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(widget.TitleLabel(k) + ": " + widget.FormatValue(fields[k], th))
	}
	return b.String()
}
