// Package config handles YAML config file loading for sceneflow run.
package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes ${VAR} and ${VAR:-default} references in a config
// document before YAML parsing.
//
// A set-but-empty variable counts as unset, the shell's :- rule: config
// files are typically driven from CI where exporting VAR="" means "use the
// default", not "use the empty string". An unset variable with no default
// expands to the empty string; a missing required value then fails at
// downstream validation with a field-specific message instead of here.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, fallback := groups[1], groups[2]
		if value := os.Getenv(name); value != "" {
			return value
		}
		return fallback
	})
}
