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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sannysanoff/textpp/internal/expr"
)

// Processor expands the directive language over a tree of input files.
// Directives must start at column zero: #include, #ifdef, #ifndef, #if,
// #else and #endif. Any other #-prefixed line is ordinary content. Content
// lines emitted from an active scope go through $$NAME$$ substitution;
// #include arguments go through ##NAME## substitution.
type Processor struct {
	Defs *Defs

	// IncludeDirs are searched, in order, for an include target that does
	// not resolve relative to the including file's directory.
	IncludeDirs []string

	// ReadFile is the file-content accessor; nil means os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	including map[string]bool
}

func NewProcessor(defs *Defs) *Processor {
	return &Processor{
		Defs:      defs,
		including: map[string]bool{},
	}
}

// Process expands the file at path and writes the assembled text to w.
// Nothing is written when an error occurs. An unreadable root file is not
// an error: it yields empty output.
func (p *Processor) Process(path string, w io.Writer) error {
	if p.including == nil {
		p.including = map[string]bool{}
	}
	var out bytes.Buffer
	if err := p.processFile(path, &out); err != nil {
		return err
	}
	_, err := w.Write(out.Bytes())
	return err
}

func (p *Processor) readFile(name string) ([]byte, error) {
	if p.ReadFile != nil {
		return p.ReadFile(name)
	}
	return os.ReadFile(name)
}

// processFile reads path and appends its expanded content to out. Missing
// and unreadable files contribute nothing.
func (p *Processor) processFile(path string, out *bytes.Buffer) error {
	content, err := p.readFile(path)
	if err != nil {
		return nil
	}
	return p.processContent(path, string(content), out)
}

func (p *Processor) processContent(path, content string, out *bytes.Buffer) error {
	abs := path
	if a, err := filepath.Abs(path); err == nil {
		abs = filepath.Clean(a)
	}
	if p.including[abs] {
		return fmt.Errorf("include cycle detected at %q", abs)
	}
	p.including[abs] = true
	defer delete(p.including, abs)

	baseDir := filepath.Dir(path)
	var cond condStack

	for _, line := range splitLines(content) {
		if rest, ok := strings.CutPrefix(line, "#"); ok {
			trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
			switch {
			case strings.HasPrefix(trimmed, "include"):
				if cond.Active() {
					if inc := p.includePath(trimmed[len("include"):]); inc != "" {
						if err := p.processInclude(baseDir, inc, out); err != nil {
							return err
						}
					}
				}
				continue
			case strings.HasPrefix(trimmed, "ifdef"):
				name := strings.TrimSpace(trimmed[len("ifdef"):])
				cond.Push(p.Defs.IsDefined(name))
				continue
			case strings.HasPrefix(trimmed, "ifndef"):
				name := strings.TrimSpace(trimmed[len("ifndef"):])
				cond.Push(!p.Defs.IsDefined(name))
				continue
			case strings.HasPrefix(trimmed, "if"):
				v, err := expr.Eval(strings.TrimSpace(trimmed[len("if"):]), p.Defs)
				if err != nil {
					return err
				}
				cond.Push(v)
				continue
			case strings.HasPrefix(trimmed, "else"):
				if !cond.Else() {
					return errors.New("invalid directive structure: #else without matching #if/#ifdef/#ifndef")
				}
				continue
			case strings.HasPrefix(trimmed, "endif"):
				if !cond.Pop() {
					return errors.New("invalid directive structure: #endif without matching #if/#ifdef/#ifndef")
				}
				continue
			}
			// Unknown directives fall through as content, '#' intact.
		}

		if cond.Active() {
			out.WriteString(expandDollar(line, p.Defs))
			out.WriteByte('\n')
		}
	}

	if cond.Depth() != 0 {
		return errors.New("invalid directive structure: missing #endif")
	}
	return nil
}

// includePath turns the text after the include keyword into a target path:
// the remainder is trimmed, every double quote is stripped, and ##NAME##
// substitution is applied. An empty result means the include is skipped.
func (p *Processor) includePath(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return ""
	}
	arg = strings.ReplaceAll(arg, `"`, "")
	return expandHash(arg, p.Defs)
}

func (p *Processor) processInclude(baseDir, inc string, out *bytes.Buffer) error {
	for _, cand := range p.includeCandidates(baseDir, inc) {
		content, err := p.readFile(cand)
		if err != nil {
			continue
		}
		return p.processContent(cand, string(content), out)
	}
	return nil
}

func (p *Processor) includeCandidates(baseDir, inc string) []string {
	if filepath.IsAbs(inc) {
		return []string{filepath.Clean(inc)}
	}
	cands := []string{filepath.Join(baseDir, inc)}
	for _, dir := range p.IncludeDirs {
		cands = append(cands, filepath.Join(dir, inc))
	}
	return cands
}

// splitLines splits content the way the per-line loop consumes it: on '\n',
// dropping a trailing newline and any '\r' left by CRLF endings.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ---------------- Conditionals ----------------

// condStack tracks nested #if/#ifdef/#ifndef scopes for one file. The
// emitting flag is always parentActive && active of the innermost frame,
// and true when no frame is open.
type condStack struct {
	frames []condFrame
}

type condFrame struct {
	parentActive bool
	active       bool
	elseSeen     bool
}

func (c *condStack) Depth() int { return len(c.frames) }

func (c *condStack) Active() bool {
	if len(c.frames) == 0 {
		return true
	}
	top := c.frames[len(c.frames)-1]
	return top.parentActive && top.active
}

func (c *condStack) Push(cond bool) {
	c.frames = append(c.frames, condFrame{parentActive: c.Active(), active: cond})
}

// Else flips the innermost frame's own condition. Only the first #else in a
// frame toggles; later ones are no-ops. Returns false when no frame is open.
func (c *condStack) Else() bool {
	if len(c.frames) == 0 {
		return false
	}
	top := &c.frames[len(c.frames)-1]
	if !top.elseSeen {
		top.elseSeen = true
		top.active = !top.active
	}
	return true
}

// Pop closes the innermost frame. Returns false when no frame is open.
func (c *condStack) Pop() bool {
	if len(c.frames) == 0 {
		return false
	}
	c.frames = c.frames[:len(c.frames)-1]
	return true
}
