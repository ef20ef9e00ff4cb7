package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// maxPasswordLength bounds the input handed to argon2.
const maxPasswordLength = 128

// PasswordPolicy defines password complexity requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// NewPasswordPolicy creates a PasswordPolicy from config.
func NewPasswordPolicy(cfg config.PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        cfg.MinLength,
		RequireUppercase: cfg.RequireUppercase,
		RequireLowercase: cfg.RequireLowercase,
		RequireNumber:    cfg.RequireNumber,
		RequireSpecial:   cfg.RequireSpecial,
	}
}

type characterClass struct {
	required func(*PasswordPolicy) bool
	matches  func(rune) bool
	message  string
}

var characterClasses = []characterClass{
	{
		required: func(p *PasswordPolicy) bool { return p.RequireUppercase },
		matches:  unicode.IsUpper,
		message:  "password must contain at least one uppercase letter",
	},
	{
		required: func(p *PasswordPolicy) bool { return p.RequireLowercase },
		matches:  unicode.IsLower,
		message:  "password must contain at least one lowercase letter",
	},
	{
		required: func(p *PasswordPolicy) bool { return p.RequireNumber },
		matches:  unicode.IsDigit,
		message:  "password must contain at least one number",
	},
	{
		required: func(p *PasswordPolicy) bool { return p.RequireSpecial },
		matches:  isSpecial,
		message:  "password must contain at least one special character",
	},
}

// ValidatePassword returns a *domain.ValidationError for the first rule the
// password breaks.
func (p *PasswordPolicy) ValidatePassword(password string) error {
	if password == "" {
		return domain.MissingField("password")
	}

	n := utf8.RuneCountInString(password)
	if p.MinLength > 0 && n < p.MinLength {
		return domain.InvalidField("password", fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}
	if n > maxPasswordLength {
		return domain.InvalidField("password", fmt.Sprintf("password must be at most %d characters long", maxPasswordLength))
	}

	for _, class := range characterClasses {
		if class.required(p) && !containsAny(password, class.matches) {
			return domain.InvalidField("password", class.message)
		}
	}
	return nil
}

func containsAny(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
