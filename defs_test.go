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

import (
	"strings"
	"testing"
)

func TestDefsStates(t *testing.T) {
	d := NewDefs()

	if d.IsDefined("NEVER") {
		t.Error("unset name reported as defined")
	}
	if got := d.Value("NEVER"); got != "" {
		t.Errorf("unset name resolved to %q", got)
	}

	d.Define("KEY", "42")
	if !d.IsDefined("KEY") {
		t.Error("defined name reported as undefined")
	}
	if got := d.Value("KEY"); got != "42" {
		t.Errorf("Value(KEY) = %q, want %q", got, "42")
	}

	d.Undefine("KEY")
	if d.IsDefined("KEY") {
		t.Error("undefined name still reported as defined")
	}
	if got := d.Value("KEY"); got != "" {
		t.Errorf("undefined name resolved to %q", got)
	}

	// Redefinition after an explicit undefine flips it back on.
	d.Define("KEY", "again")
	if !d.IsDefined("KEY") || d.Value("KEY") != "again" {
		t.Errorf("redefinition lost: defined=%v value=%q", d.IsDefined("KEY"), d.Value("KEY"))
	}
}

func TestDefsApply(t *testing.T) {
	tests := []struct {
		arg     string
		defined bool
		value   string
	}{
		{"FLAG", true, "TRUE"},
		{"NAME=alice", true, "alice"},
		{"NAME=a=b", true, "a=b"},
		{"GONE=", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			d := NewDefs()
			d.Apply(tt.arg)
			name, _, _ := strings.Cut(tt.arg, "=")
			if got := d.IsDefined(name); got != tt.defined {
				t.Errorf("IsDefined(%s) = %v, want %v", name, got, tt.defined)
			}
			if got := d.Value(name); got != tt.value {
				t.Errorf("Value(%s) = %q, want %q", name, got, tt.value)
			}
		})
	}
}
