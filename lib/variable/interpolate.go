// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variable

import (
	"strconv"
	"strings"
)

// Interpolate replaces $name, ${name} and ${name:format} references in
// template with values[name]. References to names absent from values
// are left as written. Two formats exist: "matchers" strips the
// surrounding braces from a filter expression, and "quote" renders the
// value as a double-quoted string literal for use as a matcher value.
func Interpolate(template string, values map[string]string) string {
	var builder strings.Builder
	rest := template
	for {
		dollar := strings.IndexByte(rest, '$')
		if dollar < 0 {
			builder.WriteString(rest)
			return builder.String()
		}
		builder.WriteString(rest[:dollar])
		rest = rest[dollar+1:]

		var name, format, reference string
		if strings.HasPrefix(rest, "{") {
			closing := strings.IndexByte(rest, '}')
			if closing < 0 {
				builder.WriteByte('$')
				continue
			}
			name, format, _ = strings.Cut(rest[1:closing], ":")
			reference = rest[:closing+1]
		} else {
			end := 0
			for end < len(rest) && isNameByte(rest[end]) {
				end++
			}
			name = rest[:end]
			reference = name
		}

		value, known := values[name]
		if name == "" || !known {
			builder.WriteByte('$')
			continue
		}
		switch format {
		case "matchers":
			value = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(value), "{"), "}")
		case "quote":
			value = strconv.Quote(value)
		}
		builder.WriteString(value)
		rest = rest[len(reference):]
	}
}

func isNameByte(character byte) bool {
	return character == '_' ||
		(character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z') ||
		(character >= '0' && character <= '9')
}
