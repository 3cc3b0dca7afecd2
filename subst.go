/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package textpp

import "strings"

// expandDollar replaces every $$NAME$$ span in a content line. A valid
// identifier resolves through the definition table (empty when not defined);
// a span that is not a valid identifier is deleted outright, delimiters and
// all. Text after an opener with no closing $$ is copied through unchanged.
func expandDollar(line string, defs *Defs) string {
	return expandSpans(line, '$', func(name string) string {
		if !isIdent(name) {
			return ""
		}
		return defs.Value(name)
	})
}

// expandHash replaces ##NAME## spans in an include argument. Unlike the
// content form, a name substitutes only when it is explicitly defined;
// invalid or undefined spans are deleted.
func expandHash(arg string, defs *Defs) string {
	return expandSpans(arg, '#', func(name string) string {
		if !isIdent(name) || !defs.IsDefined(name) {
			return ""
		}
		return defs.Value(name)
	})
}

// expandSpans scans runes left to right for a doubled delimiter, finds the
// next doubled delimiter, and replaces the enclosed span with whatever
// resolve returns. Everything outside spans is copied verbatim.
func expandSpans(input string, delim rune, resolve func(name string) string) string {
	runes := []rune(input)
	var b strings.Builder
	b.Grow(len(input))
	i := 0
	for i+1 < len(runes) {
		if runes[i] == delim && runes[i+1] == delim {
			if end, ok := findDoubled(runes, i+2, delim); ok {
				b.WriteString(resolve(string(runes[i+2 : end])))
				i = end + 2
				continue
			}
		}
		b.WriteRune(runes[i])
		i++
	}
	if i < len(runes) {
		b.WriteRune(runes[i])
	}
	return b.String()
}

func findDoubled(runes []rune, start int, delim rune) (int, bool) {
	for j := start; j+1 < len(runes); j++ {
		if runes[j] == delim && runes[j+1] == delim {
			return j, true
		}
	}
	return 0, false
}

// isIdent reports whether s is an ASCII letter or underscore followed by
// ASCII letters, digits or underscores.
func isIdent(s string) bool {
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return s != ""
}
