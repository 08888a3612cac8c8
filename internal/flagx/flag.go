// Package flagx lets several packages share os.Args without one flag set
// rejecting the flags that belong to another.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowed, together with their
// values. Both "-f value" and "-f=value" forms are recognised. Names listed
// in boolFlags never consume the following argument, so "-x -d dsn" keeps
// "-d dsn" intact.
//
// The result is never nil.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	allow := toSet(allowed)
	bools := toSet(boolFlags)

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allow[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allow[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		if _, isBool := bools[arg]; isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// ConfigFileFlag returns the path given with -c or -config, or "" when
// neither is present. Nothing else on the command line is inspected.
func ConfigFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
