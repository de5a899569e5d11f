package main

import (
	"os"
	"regexp"
	"strings"

	"github.com/nativepg/pgclient/pgerr"
)

// varPattern matches ${VAR}, $VAR, and %VAR% for connection-string expansion.
var varPattern = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)|%(\w+)%`)

// parseDSN parses a "KEY=VALUE;KEY=VALUE;..." connection string. Keys are
// case-insensitive; values go through environment-variable expansion
// before being returned, so a DSN like "password=${PGPASSWORD}" never
// needs the secret written to disk.
func parseDSN(dsn string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(dsn, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, pgerr.New(pgerr.KindProtocolValue, "malformed connection string segment: "+part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = expandEnv(strings.TrimSpace(value))
		out[key] = value
	}
	return out, nil
}

func expandEnv(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := varPattern.FindStringSubmatch(m)
		for _, g := range name[1:] {
			if g != "" {
				return os.Getenv(g)
			}
		}
		return m
	})
}
