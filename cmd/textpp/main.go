package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sannysanoff/textpp"
)

type config struct {
	defs        *textpp.Defs
	includeDirs []string
	input       string
}

// parseArgs applies -DNAME[=VALUE] definitions left to right (last write
// wins), collects -I include directories, and takes the first remaining
// argument as the input file. A bare -D is ignored.
func parseArgs(args []string) (config, bool) {
	cfg := config{defs: textpp.NewDefs()}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "-D"):
			if rest := arg[len("-D"):]; rest != "" {
				cfg.defs.Apply(rest)
			}
		case strings.HasPrefix(arg, "-I"):
			if rest := arg[len("-I"):]; rest != "" {
				cfg.includeDirs = append(cfg.includeDirs, rest)
			} else if i+1 < len(args) {
				i++
				cfg.includeDirs = append(cfg.includeDirs, args[i])
			}
		case cfg.input == "":
			cfg.input = arg
		}
	}
	return cfg, cfg.input != ""
}

func main() {
	cfg, ok := parseArgs(os.Args[1:])
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: textpp [-DKEY[=VALUE]] [-I dir] <input-file>")
		os.Exit(2)
	}

	p := textpp.NewProcessor(cfg.defs)
	p.IncludeDirs = cfg.includeDirs
	if err := p.Process(cfg.input, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
