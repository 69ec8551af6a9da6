package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.TrimSpace(input)
}

// CourseSlug builds the "<code>-<term>" slug the course pages route on,
// lowercased with whitespace runs collapsed to dashes.
func CourseSlug(code, term string) string {
	return slugPart(code) + "-" + slugPart(term)
}

func slugPart(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "-")
}
