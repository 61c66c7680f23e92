package salesforce

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitAPIVersion splits a version such as "40.0" into its major and minor parts.
func SplitAPIVersion(version string) (major, minor string, err error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(version), ".")
	if !ok || major == "" || minor == "" {
		return "", "", fmt.Errorf("%w: malformed api version %q", ErrUnsupportedVersion, version)
	}
	if _, err := strconv.Atoi(major); err != nil {
		return "", "", fmt.Errorf("%w: malformed api version %q", ErrUnsupportedVersion, version)
	}
	if _, err := strconv.Atoi(minor); err != nil {
		return "", "", fmt.Errorf("%w: malformed api version %q", ErrUnsupportedVersion, version)
	}
	return major, minor, nil
}

// RequireAPIVersion fails with ErrUnsupportedVersion when version is below
// minimum or cannot be parsed.
func RequireAPIVersion(version string, minimum float64) error {
	if _, _, err := SplitAPIVersion(version); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	if err != nil {
		return fmt.Errorf("%w: malformed api version %q", ErrUnsupportedVersion, version)
	}
	if v < minimum {
		return fmt.Errorf("%w: requires %.1f or later, session uses %s", ErrUnsupportedVersion, minimum, version)
	}
	return nil
}
