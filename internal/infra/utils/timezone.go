package utils

import (
	"fmt"
	"time"
)

// ValidateTimezone checks the viewer-supplied timezone against the IANA
// database before it reaches any date arithmetic.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone cannot be empty")
	}

	_, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

func IsValidTimezone(timezone string) bool {
	return ValidateTimezone(timezone) == nil
}
