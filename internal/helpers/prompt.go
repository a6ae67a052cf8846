package helpers

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const MinPasswordLen = 8

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)

	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		ZeroBytes(pw)
		return nil, fmt.Errorf("password input failed: %w", err)
	}

	if err := ValidatePassword(pw); err != nil {
		ZeroBytes(pw)
		return nil, err
	}
	return pw, nil
}

// PasswordFromEnvOrPrompt prefers the named environment variable and falls
// back to the terminal when stdin is one.
func PasswordFromEnvOrPrompt(envKey, prompt string) ([]byte, error) {
	if v := os.Getenv(envKey); v != "" {
		pw := []byte(v)
		if err := ValidatePassword(pw); err != nil {
			ZeroBytes(pw)
			return nil, fmt.Errorf("%s: %w", envKey, err)
		}
		return pw, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("no terminal for password prompt; set %s", envKey)
	}
	return PromptPassword(prompt)
}

func ValidatePassword(pw []byte) error {
	if len(pw) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	for _, b := range pw {
		if !IsAllowedPasswordChar(b) {
			return fmt.Errorf("password contains invalid characters (use letters, numbers, and special characters only)")
		}
	}
	return nil
}

// IsAllowedPasswordChar accepts printable ASCII except space.
func IsAllowedPasswordChar(b byte) bool {
	return b > ' ' && b < 0x7f
}

func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// MaskSecret keeps the first and last four characters.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
