// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package grubcfg

import "strings"

// Vars is the set of script variables visible to the parser. It is seeded
// from the GRUB environment and updated as assignments are encountered.
type Vars map[string]string

// NewVars returns a new Vars seeded with a copy of the supplied environment.
func NewVars(env map[string]string) Vars {
	v := make(Vars, len(env))
	for name, value := range env {
		v[name] = value
	}
	return v
}

func isVarNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		return true
	default:
		return false
	}
}

// Expand substitutes every unescaped variable reference in the supplied
// token with its value, or with an empty string if the variable isn't
// defined. Both the $NAME and ${NAME} forms are supported. An unbraced name
// consumes the longest run of letters, digits and underscores following the
// '$', so "$XY" refers to the variable XY rather than X. A '$' preceded by a
// backslash or at the end of the token is left as is. Substituted values are
// never expanded again.
func (v Vars) Expand(token string) string {
	if !strings.Contains(token, "$") {
		return token
	}

	var b strings.Builder
	for i := 0; i < len(token); {
		c := token[i]
		if c != '$' || i+1 == len(token) || (i > 0 && token[i-1] == '\\') {
			b.WriteByte(c)
			i++
			continue
		}

		var name string
		var end int
		if token[i+1] == '{' {
			n := strings.IndexByte(token[i+2:], '}')
			if n < 0 {
				// Unterminated reference: the name runs to the end of the token.
				name = token[i+2:]
				end = len(token)
			} else {
				name = token[i+2 : i+2+n]
				end = i + 2 + n + 1
			}
		} else {
			end = i + 1
			for end < len(token) && isVarNameChar(token[end]) {
				end++
			}
			name = token[i+1 : end]
		}

		b.WriteString(v[name])
		i = end
	}

	return b.String()
}

// parseAssignment decodes a NAME=VALUE token. The token must contain exactly
// one '=' with a non-empty name. One layer of matching quotes is removed from
// the value.
func parseAssignment(token string) (name, value string, ok bool) {
	if strings.Count(token, "=") != 1 {
		return "", "", false
	}
	name, value, _ = strings.Cut(token, "=")
	if name == "" {
		return "", "", false
	}
	if len(value) >= 2 {
		if q := value[0]; (q == '"' || q == '\'') && value[len(value)-1] == q {
			value = value[1 : len(value)-1]
		}
	}
	return name, value, true
}
