package collect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericIDRegex validates chat-account numeric IDs: 5 to 11 digits with
// no leading zero.
var numericIDRegex = regexp.MustCompile(`^[1-9][0-9]{4,10}$`)

// domainRegex validates bare domain names like "cloud.example.com".
var domainRegex = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// NonEmpty rejects blank values.
func NonEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

// NumericID validates a numeric chat-account ID such as a QQ number.
func NumericID(value string) error {
	if !numericIDRegex.MatchString(strings.TrimSpace(value)) {
		return fmt.Errorf("must be a 5-11 digit number without a leading zero")
	}
	return nil
}

// Domain validates a bare domain name without scheme or path.
func Domain(value string) error {
	if !domainRegex.MatchString(strings.TrimSpace(value)) {
		return fmt.Errorf("must be a domain name like cloud.example.com")
	}
	return nil
}

// Port validates a TCP port number.
func Port(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("must be a port between 1 and 65535")
	}
	return nil
}

// KeyList validates a comma-separated list of non-empty API keys.
func KeyList(value string) error {
	parts := strings.Split(value, ",")
	count := 0
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("provide at least one API key (comma-separated for several)")
	}
	return nil
}

// MinLength returns a validator requiring at least n characters.
func MinLength(n int) func(string) error {
	return func(value string) error {
		if len(strings.TrimSpace(value)) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}
