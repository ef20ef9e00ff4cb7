package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/joshua31324324/user-management/pkg/domain"
)

// Common disposable email domains to block (can be extended)
var disposableDomains = map[string]bool{
	"tempmail.com":      true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"throwaway.email":   true,
}

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const maxEmailLength = 254 // RFC 5321

// EmailRules controls the optional email checks.
type EmailRules struct {
	Strict          bool
	BlockDisposable bool
}

// ValidateEmail validates an email address for format and length.
func ValidateEmail(email string, rules EmailRules) error {
	if strings.TrimSpace(email) == "" {
		return domain.MissingField("email")
	}

	if len(email) > maxEmailLength {
		return domain.InvalidField("email", fmt.Sprintf("email address is too long (max %d characters)", maxEmailLength))
	}

	normalized := NormalizeEmail(email)

	// A bare address only: "Name <a@b.c>" parses but is not an email field value.
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized || addr.Name != "" {
		return domain.InvalidField("email", "invalid email address format")
	}

	if rules.Strict && !emailRegex.MatchString(addr.Address) {
		return domain.InvalidField("email", "invalid email address format")
	}

	if rules.BlockDisposable && disposableDomains[getDomain(addr.Address)] {
		return domain.InvalidField("email", "disposable email addresses are not allowed")
	}

	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func getDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
