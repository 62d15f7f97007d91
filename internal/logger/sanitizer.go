package logger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Mask replaces redacted values in logged SQL and arguments.
const Mask = "***REDACTED***"

// DefaultSensitiveFields are the column names whose values are never logged.
var DefaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey", "api_token",
	"secret", "authorization",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "private_key",
}

// Sanitizer hides values bound to sensitive columns before a statement is logged.
// Rendered SQL carries its literals inline, so the statement text itself is
// masked, not only the driver arguments.
type Sanitizer struct {
	fields    []*regexp.Regexp
	predicate *regexp.Regexp
	between   *regexp.Regexp
}

// literal matches a quoted string (backslash or doubled-quote escapes),
// a parenthesized list, a number or a {name:Type} query parameter.
const literal = `'(?:[^'\\]|\\.|'')*'|\([^()]*\)|-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b|\{[^{}]*\}`

// NewSanitizer creates a sanitizer for the given column names, or for
// DefaultSensitiveFields when none are given.
func NewSanitizer(fields ...string) *Sanitizer {
	if len(fields) == 0 {
		fields = DefaultSensitiveFields
	}

	names := make([]string, len(fields))
	compiled := make([]*regexp.Regexp, len(fields))
	for i, f := range fields {
		names[i] = regexp.QuoteMeta(f)
		compiled[i] = regexp.MustCompile(`(?i)\b` + names[i] + `\b`)
	}

	column := `(?i)(\b(?:` + strings.Join(names, "|") + `)\b\s*`
	return &Sanitizer{
		fields:    compiled,
		predicate: regexp.MustCompile(column + `(?:=|!=|<>|<=|>=|<|>|NOT\s+LIKE|LIKE|NOT\s+IN|IN)\s*)(` + literal + `)`),
		between:   regexp.MustCompile(column + `(?:NOT\s+)?BETWEEN\s+)(` + literal + `)(\s+AND\s+)(` + literal + `)`),
	}
}

// MaskSQL replaces the values compared with a sensitive column:
//
//	WHERE password = 'hunter2' -> WHERE password = '***REDACTED***'
//	WHERE cvv BETWEEN 100 AND 999 -> WHERE cvv BETWEEN '***REDACTED***' AND '***REDACTED***'
func (s *Sanitizer) MaskSQL(sql string) string {
	masked := "'" + Mask + "'"
	sql = s.between.ReplaceAllString(sql, "${1}"+masked+"${3}"+masked)
	return s.predicate.ReplaceAllString(sql, "${1}"+masked)
}

// Sensitive reports whether sql mentions any sensitive column.
func (s *Sanitizer) Sensitive(sql string) bool {
	for _, re := range s.fields {
		if re.MatchString(sql) {
			return true
		}
	}
	return false
}

// MaskArgs returns a copy of args with every value masked when sql mentions a
// sensitive column. Placeholder positions are not parsed, so masking is all
// or nothing.
func (s *Sanitizer) MaskArgs(sql string, args []any) []any {
	if len(args) == 0 || !s.Sensitive(sql) {
		return args
	}
	masked := make([]any, len(args))
	for i := range masked {
		masked[i] = Mask
	}
	return masked
}

// FormatArgs renders args for a log line, truncating long values.
func FormatArgs(args []any) string {
	if len(args) == 0 {
		return "[]"
	}

	const maxLen = 100
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "NULL"
			continue
		}
		str := fmt.Sprintf("%v", a)
		if utf8.RuneCountInString(str) > maxLen {
			str = string([]rune(str)[:maxLen]) + "..."
		}
		parts[i] = str
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
