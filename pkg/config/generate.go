package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	rmerrors "github.com/arthur-debert/resmerge/pkg/errors"
)

// GenerateConfigContent generates configuration file content with all
// values commented out, suitable for seeding a fresh resmerge.toml.
func GenerateConfigContent() string {
	return commentOutConfigValues(string(defaultConfig))
}

// Marshal renders a Config as TOML, used when persisting a resolved
// configuration for inspection.
func Marshal(cfg *Config) (string, error) {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", rmerrors.Wrap(err, rmerrors.ErrInternal, "failed to marshal config")
	}
	return string(out), nil
}

// commentOutConfigValues comments out all non-comment, non-blank lines
// that contain configuration assignments, keeping section headers as-is.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
