package output

import (
	"encoding/json"
)

// JSONFormatter formats a session's output as JSON.
type JSONFormatter struct {
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

// Format formats the output as JSON, applying any interaction filters
// before marshaling.
func (f *JSONFormatter) Format(output SessionOutput, options FormatterOptions) (string, error) {
	if len(options.Filters) > 0 {
		output.Interactions = filterInteractions(output.Interactions, options.Filters)
	}

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(output, "", "  ")
	} else {
		data, err = json.Marshal(output)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func filterInteractions(interactions []Interaction, filters []FilterFunc) []Interaction {
	kept := make([]Interaction, 0, len(interactions))
	for _, i := range interactions {
		include := true
		for _, filter := range filters {
			if !filter(i) {
				include = false
				break
			}
		}
		if include {
			kept = append(kept, i)
		}
	}
	return kept
}
