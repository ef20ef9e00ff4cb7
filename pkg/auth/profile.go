package auth

import (
	"encoding/json"
	"strings"

	"github.com/joshua31324324/user-management/pkg/domain"
)

// AttributionMarker prefixes display fields a manager or admin writes on
// another user's account. A submitted value that already starts with the
// marker is stored as submitted, so resubmitting a stored attributed value is
// a no-op instead of stacking markers.
const AttributionMarker = "Admin: "

// ProfileUpdate carries the fields of an update request. A nil field is absent
// unless the decoded body named it with a JSON null.
type ProfileUpdate struct {
	Email              *string `json:"email,omitempty"`
	Name               *string `json:"name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	Location           *string `json:"location,omitempty"`
	GitHubProfileURL   *string `json:"github_profile_url,omitempty"`
	LinkedInProfileURL *string `json:"linkedin_profile_url,omitempty"`
	Role               *string `json:"role,omitempty"`

	// nulls holds the recognized keys the body set to null.
	nulls map[string]bool
}

var profileFields = map[string]bool{
	"email":                true,
	"name":                 true,
	"bio":                  true,
	"location":             true,
	"github_profile_url":   true,
	"linkedin_profile_url": true,
	"role":                 true,
}

// UnmarshalJSON decodes the fields and remembers which recognized keys were
// sent as null.
func (u *ProfileUpdate) UnmarshalJSON(data []byte) error {
	type fields ProfileUpdate
	var decoded fields
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = ProfileUpdate(decoded)
	u.nulls = nil
	for key, value := range raw {
		key = strings.ToLower(key)
		if profileFields[key] && string(value) == "null" {
			if u.nulls == nil {
				u.nulls = make(map[string]bool)
			}
			u.nulls[key] = true
		}
	}
	return nil
}

// IsEmpty reports whether no recognized field is present.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.Bio == nil && u.Location == nil &&
		u.GitHubProfileURL == nil && u.LinkedInProfileURL == nil && u.Role == nil &&
		len(u.nulls) == 0
}

func (u ProfileUpdate) isNull(field string) bool {
	return u.nulls[field]
}

// checkNull accepts a null only where it restates a stored null.
func (u ProfileUpdate) checkNull(field string, stored *string) error {
	if u.isNull(field) && stored != nil {
		return domain.InvalidField(field, "must not be null")
	}
	return nil
}

// ProfileUpdatePolicy validates update requests and applies them to an account.
type ProfileUpdatePolicy struct {
	authz      *Policy
	emailRules EmailRules
}

// NewProfileUpdatePolicy creates a profile update policy.
func NewProfileUpdatePolicy(authz *Policy, emailRules EmailRules) *ProfileUpdatePolicy {
	return &ProfileUpdatePolicy{authz: authz, emailRules: emailRules}
}

// Apply validates upd and returns a copy of target with it applied. changed is
// false when every submitted value equals the stored one. With requireName set
// the request must carry a name.
//
// Apply does not check whether actor may update target; callers authorize first.
func (p *ProfileUpdatePolicy) Apply(actor domain.Actor, target *domain.User, upd ProfileUpdate, requireName bool) (updated *domain.User, changed bool, err error) {
	if upd.IsEmpty() {
		return nil, false, &domain.ValidationError{Message: "at least one field must be provided", Missing: true}
	}
	if requireName && upd.Name == nil && !upd.isNull("name") {
		return nil, false, domain.MissingField("name")
	}

	attribute := actor.ID != target.ID && p.authz.IsPrivileged(actor)
	next := target.Clone()

	if upd.isNull("email") {
		return nil, false, domain.InvalidField("email", "must not be null")
	}
	if upd.Email != nil {
		if strings.TrimSpace(*upd.Email) == "" {
			return nil, false, domain.InvalidField("email", "must not be empty")
		}
		if err := ValidateEmail(*upd.Email, p.emailRules); err != nil {
			return nil, false, err
		}
		next.Email = NormalizeEmail(*upd.Email)
	}

	texts := []struct {
		field string
		value *string
		max   int
		dst   **string
	}{
		{"name", upd.Name, maxNameLength, &next.Name},
		{"bio", upd.Bio, maxBioLength, &next.Bio},
		{"location", upd.Location, maxLocationLength, &next.Location},
	}
	for _, f := range texts {
		if f.value == nil {
			if err := upd.checkNull(f.field, *f.dst); err != nil {
				return nil, false, err
			}
			continue
		}
		v := SanitizeText(*f.value)
		if v == "" {
			return nil, false, domain.InvalidField(f.field, "must not be empty")
		}
		if err := ValidateStringLength(f.field, v, 1, f.max); err != nil {
			return nil, false, err
		}
		if attribute {
			v = withMarker(v)
		}
		*f.dst = &v
	}

	urls := []struct {
		field string
		value *string
		dst   **string
	}{
		{"github_profile_url", upd.GitHubProfileURL, &next.GitHubProfileURL},
		{"linkedin_profile_url", upd.LinkedInProfileURL, &next.LinkedInProfileURL},
	}
	for _, f := range urls {
		if f.value == nil {
			if err := upd.checkNull(f.field, *f.dst); err != nil {
				return nil, false, err
			}
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, false, domain.InvalidField(f.field, "must not be empty")
		}
		if err := ValidateProfileURL(f.field, v); err != nil {
			return nil, false, err
		}
		*f.dst = &v
	}

	if upd.isNull("role") {
		return nil, false, domain.InvalidField("role", "must not be null")
	}
	if upd.Role != nil {
		if strings.TrimSpace(*upd.Role) == "" {
			return nil, false, domain.InvalidField("role", "must not be empty")
		}
		role, err := domain.ParseRole(*upd.Role)
		if err != nil {
			return nil, false, err
		}
		if role != target.Role {
			if !p.authz.CanGrant(actor, role) || !p.authz.CanGrant(actor, target.Role) {
				return nil, false, domain.ErrRoleNotGrantable
			}
			next.Role = role
		}
	}

	return next, !sameProfile(target, next), nil
}

// withMarker prefixes v with the attribution marker unless it already carries it.
func withMarker(v string) string {
	if strings.HasPrefix(v, AttributionMarker) {
		return v
	}
	return AttributionMarker + v
}

func sameProfile(a, b *domain.User) bool {
	return a.Email == b.Email &&
		a.Role == b.Role &&
		equalPtr(a.Name, b.Name) &&
		equalPtr(a.Bio, b.Bio) &&
		equalPtr(a.Location, b.Location) &&
		equalPtr(a.GitHubProfileURL, b.GitHubProfileURL) &&
		equalPtr(a.LinkedInProfileURL, b.LinkedInProfileURL)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
