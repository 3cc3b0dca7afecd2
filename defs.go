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

// Defs is the definition table consulted by directives and substitutions.
// A name is in one of three states: never set, defined with a value, or
// explicitly undefined (set with an empty value, which overrides any earlier
// definition). The table is populated up front and treated as read-only for
// the rest of a run.
type Defs struct {
	values  map[string]string
	defined map[string]bool
}

func NewDefs() *Defs {
	return &Defs{
		values:  map[string]string{},
		defined: map[string]bool{},
	}
}

// Define marks name as defined with the given value.
func (d *Defs) Define(name, value string) {
	d.values[name] = value
	d.defined[name] = true
}

// Undefine forces name to be not defined, discarding any stored value.
func (d *Defs) Undefine(name string) {
	delete(d.values, name)
	d.defined[name] = false
}

// Apply interprets a NAME[=VALUE] definition argument: a bare NAME defines it
// as "TRUE", NAME=VALUE defines it with that value, and NAME= (nothing after
// the equals sign) explicitly undefines it.
func (d *Defs) Apply(arg string) {
	name, value, found := strings.Cut(arg, "=")
	switch {
	case !found:
		d.Define(arg, "TRUE")
	case value == "":
		d.Undefine(name)
	default:
		d.Define(name, value)
	}
}

func (d *Defs) IsDefined(name string) bool {
	return d.defined[name]
}

// Value returns the stored value of a defined name ("TRUE" when defined
// without one) and the empty string for any name that is not defined.
func (d *Defs) Value(name string) string {
	if !d.defined[name] {
		return ""
	}
	if v, ok := d.values[name]; ok {
		return v
	}
	return "TRUE"
}
