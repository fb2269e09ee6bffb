package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes. Script and style contents are dropped.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML and returns plain text.
// Use for: event titles and descriptions, user names and bios, tags.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// TextSlice sanitizes each string in a slice, removing all HTML.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
