package auth

import (
	"net/url"
	"strings"

	"github.com/joshua31324324/user-management/pkg/domain"
)

const maxURLLength = 2048

// ValidateProfileURL accepts absolute http and https URLs with a host.
func ValidateProfileURL(field, raw string) error {
	if len(raw) > maxURLLength {
		return domain.InvalidField(field, "URL is too long")
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return domain.InvalidField(field, "invalid URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return domain.InvalidField(field, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.InvalidField(field, "URL must use http or https")
	}
	if u.Hostname() == "" {
		return domain.InvalidField(field, "URL must include a host")
	}
	return nil
}
