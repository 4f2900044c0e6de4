// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/samber/lo"
)

var (
	outputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}
	logLevels     = []string{"", "debug", "info", "warn", "warning", "error"}
	logFormats    = []string{"", "json", "console"}
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if !lo.Contains(outputFormats, format) {
		return fmt.Errorf("expected output format of %s, got %s",
			strings.Join(outputFormats, ", "), format)
	}
	return nil
}

// ValidateLogLevel checks a logging level name. Empty means the default.
func ValidateLogLevel(level string) error {
	if !lo.Contains(logLevels, level) {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}

// ValidateLogFormat checks a logging encoder name. Empty means the default.
func ValidateLogFormat(format string) error {
	if !lo.Contains(logFormats, format) {
		return fmt.Errorf("invalid log format: %s", format)
	}
	return nil
}
