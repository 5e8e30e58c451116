// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package filterset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse error in this package.
var ErrMalformed = errors.New("malformed filter")

// Format renders filters as a selector expression. An empty list
// renders as "{}".
func Format(filters []Entry) string {
	return "{" + Matchers(filters) + "}"
}

// Matchers renders filters as a comma-separated matcher list without
// the surrounding braces, for splicing into a larger selector.
func Matchers(filters []Entry) string {
	parts := make([]string, 0, len(filters))
	for _, entry := range filters {
		if entry.Operator == OperatorIsEmpty {
			parts = append(parts, entry.Key+`=""`)
			continue
		}
		parts = append(parts, entry.Key+string(entry.Operator)+strconv.Quote(entry.Value))
	}
	return strings.Join(parts, ",")
}

// Parse reads a selector expression produced by [Format]. The braces
// are optional and an empty string yields an empty list. A matcher of
// the form `key=""` parses as an is-empty entry.
func Parse(expression string) ([]Entry, error) {
	body := strings.TrimSpace(expression)
	if body == "" {
		return nil, nil
	}
	if strings.HasPrefix(body, "{") {
		if !strings.HasSuffix(body, "}") {
			return nil, fmt.Errorf("filterset: %q: unterminated selector: %w", expression, ErrMalformed)
		}
		body = body[1 : len(body)-1]
	}

	var filters []Entry
	rest := body
	for {
		rest = strings.TrimLeft(rest, " \t,")
		if rest == "" {
			return filters, nil
		}

		key, afterKey := scanKey(rest)
		if key == "" {
			return nil, fmt.Errorf("filterset: %q: expected label name at %q: %w", expression, rest, ErrMalformed)
		}

		operator, afterOperator := scanOperator(strings.TrimLeft(afterKey, " \t"))
		if operator == "" {
			return nil, fmt.Errorf("filterset: %q: expected operator after %q: %w", expression, key, ErrMalformed)
		}

		valueSource := strings.TrimLeft(afterOperator, " \t")
		quoted, err := strconv.QuotedPrefix(valueSource)
		if err != nil {
			return nil, fmt.Errorf("filterset: %q: expected quoted value for %q: %w", expression, key, ErrMalformed)
		}
		value, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("filterset: %q: invalid quoted value for %q: %w", expression, key, ErrMalformed)
		}
		rest = valueSource[len(quoted):]

		if operator == OperatorEqual && value == "" {
			filters = append(filters, Entry{Key: key, Operator: OperatorIsEmpty})
		} else {
			filters = append(filters, Entry{Key: key, Operator: operator, Value: value})
		}

		rest = strings.TrimLeft(rest, " \t")
		if rest != "" && rest[0] != ',' {
			return nil, fmt.Errorf("filterset: %q: expected ',' before %q: %w", expression, rest, ErrMalformed)
		}
	}
}

// MustParse is like [Parse] but panics on error. Intended for
// constants and tests.
func MustParse(expression string) []Entry {
	filters, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return filters
}

func scanKey(source string) (string, string) {
	end := 0
	for end < len(source) {
		character := source[end]
		isLetter := character == '_' || (character >= 'a' && character <= 'z') || (character >= 'A' && character <= 'Z')
		isDigit := character >= '0' && character <= '9'
		if !(isLetter || (end > 0 && (isDigit || character == '.'))) {
			break
		}
		end++
	}
	return source[:end], source[end:]
}

func scanOperator(source string) (Operator, string) {
	// Two-character operators first so "=~" is not read as "=".
	for _, operator := range []Operator{OperatorRegexMatch, OperatorRegexNoMatch, OperatorNotEqual, OperatorEqual} {
		if strings.HasPrefix(source, string(operator)) {
			return operator, source[len(operator):]
		}
	}
	return "", source
}

// urlSeparator separates the fields of one URL segment.
const urlSeparator = "|"

// urlValueEscape replaces `|` inside values in URL segments.
const urlValueEscape = "__gfp__"

// EncodeURL renders each entry as a `key|operator|value` segment
// suitable for a repeated query parameter.
func EncodeURL(filters []Entry) []string {
	segments := make([]string, 0, len(filters))
	for _, entry := range filters {
		value := strings.ReplaceAll(entry.Value, urlSeparator, urlValueEscape)
		if entry.Operator == OperatorIsEmpty {
			value = ""
		}
		segments = append(segments, entry.Key+urlSeparator+string(entry.Operator)+urlSeparator+value)
	}
	return segments
}

// DecodeURL reads segments produced by [EncodeURL]. Malformed segments
// are skipped; the returned error (nil when every segment decoded)
// describes each one so callers can log what was dropped.
func DecodeURL(segments []string) ([]Entry, error) {
	var filters []Entry
	var problems []error
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		parts := strings.SplitN(segment, urlSeparator, 3)
		if len(parts) != 3 || parts[0] == "" {
			problems = append(problems, fmt.Errorf("filterset: URL segment %q: expected key|operator|value: %w", segment, ErrMalformed))
			continue
		}
		operator := Operator(parts[1])
		if !operator.Valid() {
			problems = append(problems, fmt.Errorf("filterset: URL segment %q: unknown operator %q: %w", segment, parts[1], ErrMalformed))
			continue
		}
		entry := Entry{Key: parts[0], Operator: operator}
		if operator != OperatorIsEmpty {
			entry.Value = strings.ReplaceAll(parts[2], urlValueEscape, urlSeparator)
		}
		filters = append(filters, entry)
	}
	return filters, errors.Join(problems...)
}
