package output

import (
	"fmt"
	"strconv"
	"strings"
)

// NewFormatter creates a formatter based on the specified format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatPretty:
		return NewPrettyFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(true), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "pretty", "":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// ParseVerbosityLevel parses a string into a VerbosityLevel.
func ParseVerbosityLevel(s string) (VerbosityLevel, error) {
	switch strings.ToLower(s) {
	case "quiet", "q":
		return VerbosityQuiet, nil
	case "normal", "n", "":
		return VerbosityNormal, nil
	case "verbose", "v":
		return VerbosityVerbose, nil
	case "debug", "d", "vv":
		return VerbosityDebug, nil
	default:
		return VerbosityNormal, fmt.Errorf("unknown verbosity level: %s", s)
	}
}

// CreateRegionFilter creates a filter that keeps only interactions whose
// virtual coordinates fall within [minX,maxX]x[minY,maxY], inclusive,
// the touch-session analog of the predecessor's severity filter, useful
// for a calibration session only interested in one corner of the screen.
func CreateRegionFilter(minX, minY, maxX, maxY int) FilterFunc {
	return func(i Interaction) bool {
		return i.VirtualX >= minX && i.VirtualX <= maxX &&
			i.VirtualY >= minY && i.VirtualY <= maxY
	}
}

// ParseRegion parses a "minX,minY,maxX,maxY" string into a region filter.
func ParseRegion(s string) (FilterFunc, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region must have 4 comma-separated values, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region value %q: %w", p, err)
		}
		vals[i] = v
	}
	return CreateRegionFilter(vals[0], vals[1], vals[2], vals[3]), nil
}

// FormatOutput is a convenience function that formats a session's output
// using the specified options.
func FormatOutput(output SessionOutput, format string, verbosity string, noColor bool, region string) (string, error) {
	outputFormat, err := ParseOutputFormat(format)
	if err != nil {
		return "", err
	}

	verbosityLevel, err := ParseVerbosityLevel(verbosity)
	if err != nil {
		return "", err
	}

	formatter, err := NewFormatter(outputFormat)
	if err != nil {
		return "", err
	}

	options := FormatterOptions{
		Format:      outputFormat,
		Verbosity:   verbosityLevel,
		ColorScheme: GetColorScheme(false, noColor),
		NoColor:     noColor,
	}

	if region != "" {
		filter, err := ParseRegion(region)
		if err != nil {
			return "", err
		}
		if filter != nil {
			options.Filters = append(options.Filters, filter)
		}
	}

	return formatter.Format(output, options)
}
