// Package config holds hookline's application settings and the environment
// substitution applied to hook configuration files before parsing.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${env://VAR} and ${env://VAR:-default}. The explicit
// env:// scheme keeps plain shell ${VAR} references inside hook commands
// untouched; those must reach the shell verbatim.
var envVarPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// parseVariableWithDefault splits "VAR:-default" into its variable name and
// default value.
func parseVariableWithDefault(varPart string) (varName, defaultValue string, hasDefault bool) {
	if strings.Contains(varPart, ":-") {
		parts := strings.SplitN(varPart, ":-", 2)
		return parts[0], parts[1], true
	}
	return varPart, "", false
}

// EnvSubstituter handles environment variable substitution in hook
// configuration content, supporting both ${env://VAR} and
// ${env://VAR:-default} patterns.
type EnvSubstituter struct{}

// SubstituteEnvVars replaces ${env://VAR} and ${env://VAR:-default} patterns
// with environment variables. If a variable is not set and has a default
// value, the default is used. Returns an error if required variables (those
// without defaults) are not set, so a missing variable surfaces at config
// load time rather than as a broken command during dispatch.
func (e *EnvSubstituter) SubstituteEnvVars(content string) (string, error) {
	var errors []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varPart := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${env://")

		varName, defaultValue, hasDefault := parseVariableWithDefault(varPart)

		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}

		if hasDefault {
			return defaultValue
		}

		errors = append(errors, fmt.Sprintf("required environment variable %s not set in %s", varName, match))
		return match // Keep original if error
	})

	if len(errors) > 0 {
		return "", fmt.Errorf("environment variable substitution failed: %s", strings.Join(errors, ", "))
	}

	return result, nil
}

// HasEnvVars checks if content contains environment variable patterns
// (${env://...}), useful for skipping substitution entirely.
func HasEnvVars(content string) bool {
	return envVarPattern.MatchString(content)
}
