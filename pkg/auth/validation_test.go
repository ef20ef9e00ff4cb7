package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/joshua31324324/user-management/pkg/domain"
)

func TestValidateProfileURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://github.com/someone"},
		{name: "http", url: "http://linkedin.com/in/someone"},
		{name: "upper-case scheme", url: "HTTPS://github.com/someone"},
		{name: "with port and query", url: "https://example.com:8443/p?q=1"},
		{name: "no scheme", url: "github.com/someone", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/file", wantErr: true},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true},
		{name: "missing host", url: "https:///path", wantErr: true},
		{name: "contains space", url: "https://example.com/some one", wantErr: true},
		{name: "garbage", url: "invalid-url", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileURL("github_profile_url", tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateProfileURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != "github_profile_url" {
				t.Errorf("error = %v, want ValidationError on github_profile_url", err)
			}
		})
	}
}
