package auth

import (
	"regexp"

	"github.com/yukikurage/learnflow-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperPattern     = regexp.MustCompile(`[A-Z]`)
	lowerPattern     = regexp.MustCompile(`[a-z]`)
	digitPattern     = regexp.MustCompile(`\d`)
	symbolPattern    = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
	strengthCriteria = []struct {
		ok       func(string) bool
		feedback string
	}{
		{func(p string) bool { return len(p) >= constants.MinPasswordLength }, "At least 8 characters"},
		{upperPattern.MatchString, "One uppercase letter"},
		{lowerPattern.MatchString, "One lowercase letter"},
		{digitPattern.MatchString, "One number"},
		{symbolPattern.MatchString, "One special character"},
	}
)

// PasswordStrength scores a password against the five-point checklist and
// returns the unmet criteria.
type PasswordStrength struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// Acceptable reports whether the score reaches the registration threshold.
func (s PasswordStrength) Acceptable() bool {
	return s.Score >= constants.MinPasswordStrength
}

func CheckPasswordStrength(password string) PasswordStrength {
	strength := PasswordStrength{Feedback: []string{}}
	for _, c := range strengthCriteria {
		if c.ok(password) {
			strength.Score++
		} else {
			strength.Feedback = append(strength.Feedback, c.feedback)
		}
	}
	return strength
}

// IsValidEmail performs the same loose shape check as the web client.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ErrPasswordTooLong is returned for passwords bcrypt would reject.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword hashes a password with bcrypt. Passwords longer than
// MaxPasswordLength bytes are rejected.
func HashPassword(password string) (string, error) {
	if len(password) > constants.MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
