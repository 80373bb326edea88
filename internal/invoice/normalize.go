package invoice

import (
	"regexp"
	"strings"
)

var (
	reHorizontalSpace = regexp.MustCompile(`[ \t]+`)
	reNumber          = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reNonDigit        = regexp.MustCompile(`\D`)
)

// Normalize makes extracted text predictable for the layout regexes: NBSP becomes a
// space, carriage returns become newlines and runs of spaces and tabs collapse to
// one space. Line structure is preserved.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return reHorizontalSpace.ReplaceAllString(text, " ")
}

// labeledValue finds a value printed either after its label on the same line or at
// the start of the next line. label and value are regular expressions; matching is
// case-insensitive. The empty string means no match.
func labeledValue(text, label, value string) string {
	re, err := regexp.Compile(`(?i)` + label + `\s*(?:\n\s*)?(` + value + `)`)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// lineNumbers returns every unsigned number on a line in order of appearance.
// Thousands separators split a number, as they do on the printed layouts.
func lineNumbers(line string) []string {
	return reNumber.FindAllString(line, -1)
}

// lines splits normalized text into lines.
func lines(text string) []string {
	return strings.Split(text, "\n")
}
