// Package security screens statements before execution for constructs
// that indicate injected SQL in raw-text fragments.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDangerousSQL is returned when a statement matches a blocked pattern.
var ErrDangerousSQL = errors.New("dangerous SQL pattern detected")

// Validator checks rendered SQL and driver arguments against blocked patterns.
//
// String literals produced by the builder are escaped, so they are removed
// before matching: only raw-text fragments (column names, NewExp text, join
// conditions) can trigger the validator.
type Validator struct {
	patterns []*regexp.Regexp
	strict   bool
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithStrict also blocks any UNION and system table access.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// NewValidator creates a validator with the default blocked patterns.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		patterns: compilePatterns(dangerousPatterns),
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.strict {
		v.patterns = append(v.patterns, compilePatterns(strictPatterns)...)
	}

	return v
}

// dangerousPatterns are matched against the upper-cased statement with
// literals removed. A SELECT built by the query builder never contains them.
var dangerousPatterns = []string{
	// comments
	`--`,
	`/\*`,
	`#\s`,

	// stacked statements
	`;\s*\S`,

	// DDL / DML smuggled into a raw fragment
	`\b(?:DROP|TRUNCATE|ALTER|CREATE|RENAME|ATTACH|DETACH)\s+(?:TABLE|DATABASE|VIEW|DICTIONARY|USER)\b`,
	`\bINSERT\s+INTO\b`,
	`\bKILL\s+QUERY\b`,
	`\bSYSTEM\s+(?:SHUTDOWN|KILL|DROP|RELOAD)\b`,

	// table functions reaching outside the server
	`\b(?:FILE|URL|S3|HDFS|REMOTE|REMOTESECURE|MYSQL|POSTGRESQL|EXECUTABLE)\s*\(`,

	// timing probes
	`\bSLEEP(?:EACHROW)?\s*\(`,
	`\bPG_SLEEP\s*\(`,
	`\bBENCHMARK\s*\(`,

	// tautologies
	`\bOR\s+1\s*=\s*1\b`,
	`\bOR\s+''\s*=\s*''`,
	`\bAND\s+1\s*=\s*0\b`,
}

// strictPatterns may block legitimate analytical queries.
var strictPatterns = []string{
	`\bUNION\b`,
	`\bSYSTEM\.`,
	`\bINFORMATION_SCHEMA\b`,
}

// Quoting selects how string literals escape an embedded quote.
type Quoting int

const (
	// BackslashQuoting is 'it\'s', as rendered for ClickHouse and MySQL.
	BackslashQuoting Quoting = iota
	// DoubledQuoting is 'it''s', as rendered for PostgreSQL and SQLite.
	// A backslash inside such a literal is an ordinary character.
	DoubledQuoting
)

var (
	backslashQuoted = regexp.MustCompile(`'(?:[^'\\]|\\.|'')*'`)
	doubledQuoted   = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// ValidateQuery returns an error wrapping ErrDangerousSQL if the statement,
// outside its string literals, matches a blocked pattern. quoting must match
// the dialect the statement was rendered for.
func (v *Validator) ValidateQuery(query string, quoting Quoting) error {
	literals := backslashQuoted
	if quoting == DoubledQuoting {
		literals = doubledQuoted
	}
	stripped := strings.ToUpper(literals.ReplaceAllString(query, "''"))
	stripped = strings.TrimRight(strings.TrimSpace(stripped), ";")

	for _, pattern := range v.patterns {
		if loc := pattern.FindStringIndex(stripped); loc != nil {
			return fmt.Errorf("%w: %q", ErrDangerousSQL, stripped[loc[0]:loc[1]])
		}
	}
	return nil
}

// injectionIndicators are substrings that have no business in a bound parameter value.
var injectionIndicators = []string{
	"'--",
	"';",
	"' OR ",
	"' AND ",
	"/*",
	"*/",
	"' UNION ",
	"' DROP ",
}

// ValidateArgs checks string driver arguments for injection attempts.
func (v *Validator) ValidateArgs(args []any) error {
	for i, arg := range args {
		str, ok := arg.(string)
		if !ok {
			continue
		}
		upper := strings.ToUpper(str)
		for _, indicator := range injectionIndicators {
			if strings.Contains(upper, indicator) {
				return fmt.Errorf("%w: argument %d", ErrDangerousSQL, i)
			}
		}
	}
	return nil
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
