// Package flagx contains helpers for multi-stage command-line parsing, where
// several config layers each own a subset of the flags and must ignore the
// rest of os.Args without tripping over unknown-flag errors.
package flagx

import "strings"

// FilterArgs returns the subset of args containing only the allowed flags
// and their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" / "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// A following non-flag argument is this flag's value.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JSONConfigFlag scans args for -c/-config and returns the value, or ""
// when neither flag is present. It does not use the flag package so that it
// can run before any FlagSet has been defined.
func JSONConfigFlag(args []string) string {
	filtered := FilterArgs(args, []string{"-c", "-config", "--config"})
	for i := 0; i < len(filtered); i++ {
		arg := filtered[i]
		if strings.Contains(arg, "=") {
			return strings.SplitN(arg, "=", 2)[1]
		}
		if i+1 < len(filtered) {
			return filtered[i+1]
		}
	}
	return ""
}
