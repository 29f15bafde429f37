package main

import "strings"

// legacyFlags maps the single-dash long flags accepted by earlier releases
// to their current spelling.
var legacyFlags = map[string]string{
	"-output":      "--output",
	"-checks":      "--checks",
	"-verbose":     "--verbose",
	"-no-progress": "--no-progress",
	"-np":          "--no-progress",
	"-timeout":     "--timeout",
	"-help":        "--help",
}

// normalizeArgs rewrites legacy single-dash long flags, including the
// "-flag=value" form, so pflag can parse them. Everything after "--" is
// left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if repl, ok := legacyFlags[name]; ok {
			if hasValue {
				repl += "=" + value
			}
			out = append(out, repl)
			continue
		}
		out = append(out, arg)
	}
	return out
}
