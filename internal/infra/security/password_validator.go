package security

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	minZxcvbnScore    = 2
)

var ErrWeakPassword = errors.New("password does not meet policy requirements")

// ValidatePassword enforces the password policy for reset confirmations:
// length bounds, character class mix and a zxcvbn strength floor. The user
// inputs feed zxcvbn so passwords derived from the account's own email or
// name score low.
func ValidatePassword(password string, userInputs ...string) error {
	var problems []string

	if len(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at most %d characters", maxPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "must contain a digit")
	}

	if len(problems) == 0 {
		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score < minZxcvbnScore {
			problems = append(problems, "is too predictable")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(problems, "; "))
	}

	return nil
}
