package validator

import (
	"fmt"
	"regexp"
)

func Username(username string) error {
	const maxLength = 32

	if username == "" {
		return fmt.Errorf("empty_username")
	}
	if len(username) > maxLength {
		return fmt.Errorf("long_username")
	}

	const usernameRegex = `^[a-zA-Z0-9][a-zA-Z0-9._-]*$`
	if !regexp.MustCompile(usernameRegex).MatchString(username) {
		return fmt.Errorf("bad_format")
	}

	return nil
}

// Password enforces the minimum length policy. The value is a placeholder
// policy, not a strength check.
func Password(password string) error {
	const minLength = 3

	if len(password) < minLength {
		return fmt.Errorf("short_password")
	}
	if len(password) > 72 { // bcrypt input cap
		return fmt.Errorf("long_password")
	}
	return nil
}

func ChannelName(name string) error {
	const maxLength = 64

	if name == "" {
		return fmt.Errorf("empty_name")
	}
	if len(name) > maxLength {
		return fmt.Errorf("long_name")
	}
	return nil
}

func ServerName(name string) error {
	const maxLength = 64

	if name == "" {
		return fmt.Errorf("empty_name")
	}
	if len(name) > maxLength {
		return fmt.Errorf("long_name")
	}
	return nil
}
