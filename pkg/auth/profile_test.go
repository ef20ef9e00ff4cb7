package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfilePolicy() *ProfileUpdatePolicy {
	return NewProfileUpdatePolicy(NewPolicy(), EmailRules{Strict: true})
}

func profileTarget() *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "regular@example.com",
		Role:     domain.RoleAuthenticated,
		Name:     strPtr("Regular User"),
		Bio:      strPtr("Hello"),
		Location: strPtr("Berlin"),
	}
}

func TestProfileUpdatePolicy_Validation(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	self := domain.Actor{ID: target.ID, Role: target.Role}

	tests := []struct {
		name        string
		upd         ProfileUpdate
		requireName bool
		wantField   string
		wantMissing bool
	}{
		{name: "no fields", upd: ProfileUpdate{}, wantMissing: true},
		{name: "bio only without name on replacement", upd: ProfileUpdate{Bio: strPtr("x")}, requireName: true, wantField: "name", wantMissing: true},
		{name: "empty name", upd: ProfileUpdate{Name: strPtr("")}, wantField: "name"},
		{name: "whitespace name", upd: ProfileUpdate{Name: strPtr("   ")}, wantField: "name"},
		{name: "empty name on replacement", upd: ProfileUpdate{Name: strPtr("")}, requireName: true, wantField: "name"},
		{name: "empty bio", upd: ProfileUpdate{Bio: strPtr("")}, wantField: "bio"},
		{name: "empty location", upd: ProfileUpdate{Location: strPtr("")}, wantField: "location"},
		{name: "empty email", upd: ProfileUpdate{Email: strPtr("")}, wantField: "email"},
		{name: "malformed email", upd: ProfileUpdate{Email: strPtr("invalid-email")}, wantField: "email"},
		{name: "malformed github url", upd: ProfileUpdate{GitHubProfileURL: strPtr("invalid-url")}, wantField: "github_profile_url"},
		{name: "empty linkedin url", upd: ProfileUpdate{LinkedInProfileURL: strPtr("")}, wantField: "linkedin_profile_url"},
		{name: "unknown role", upd: ProfileUpdate{Role: strPtr("ROOT")}, wantField: "role"},
		{name: "name too long", upd: ProfileUpdate{Name: strPtr(strings.Repeat("x", maxNameLength+1))}, wantField: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.Apply(self, target, tt.upd, tt.requireName)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMissing, ve.Missing)
		})
	}
}

func TestProfileUpdatePolicy_SelfEditHasNoMarker(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	self := domain.Actor{ID: target.ID, Role: target.Role}

	next, changed, err := p.Apply(self, target, ProfileUpdate{Name: strPtr("  New Name "), Bio: strPtr("New bio")}, false)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "New Name", *next.Name)
	assert.Equal(t, "New bio", *next.Bio)
	assert.Equal(t, "Berlin", *next.Location)
	assert.Equal(t, "Regular User", *target.Name, "target must not be mutated")
}

func TestProfileUpdatePolicy_AdminSelfEditHasNoMarker(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	target.Role = domain.RoleAdmin
	self := domain.Actor{ID: target.ID, Role: domain.RoleAdmin}

	next, _, err := p.Apply(self, target, ProfileUpdate{Name: strPtr("Boss")}, false)

	require.NoError(t, err)
	assert.Equal(t, "Boss", *next.Name)
}

func TestProfileUpdatePolicy_AttributionMarker(t *testing.T) {
	p := newProfilePolicy()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleManager} {
		t.Run(string(role), func(t *testing.T) {
			target := profileTarget()
			actor := domain.Actor{ID: uuid.New(), Role: role}

			next, changed, err := p.Apply(actor, target, ProfileUpdate{
				Name:             strPtr("Updated Name"),
				Bio:              strPtr("Updated bio"),
				Location:         strPtr("Paris"),
				GitHubProfileURL: strPtr("https://github.com/regular"),
			}, false)

			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, "Admin: Updated Name", *next.Name)
			assert.Equal(t, "Admin: Updated bio", *next.Bio)
			assert.Equal(t, "Admin: Paris", *next.Location)
			assert.Equal(t, "https://github.com/regular", *next.GitHubProfileURL, "URLs are not attributed")
		})
	}
}

func TestProfileUpdatePolicy_MarkerNotDoubled(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	target.Name = strPtr("Admin: Updated Name")
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	for _, submitted := range []string{"Updated Name", "Admin: Updated Name"} {
		next, changed, err := p.Apply(admin, target, ProfileUpdate{Name: strPtr(submitted)}, false)
		require.NoError(t, err)
		assert.Equal(t, "Admin: Updated Name", *next.Name)
		assert.False(t, changed, "submitted %q", submitted)
	}
}

func TestProfileUpdatePolicy_Idempotent(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	self := domain.Actor{ID: target.ID, Role: target.Role}

	next, changed, err := p.Apply(self, target, ProfileUpdate{
		Email:    strPtr("Regular@Example.com"),
		Name:     strPtr("Regular User"),
		Bio:      strPtr("Hello"),
		Location: strPtr("Berlin"),
		Role:     strPtr("authenticated"),
	}, true)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, *target.Name, *next.Name)
	assert.Equal(t, target.Email, next.Email)
}

func decodeUpdate(t *testing.T, body string) ProfileUpdate {
	t.Helper()
	var upd ProfileUpdate
	require.NoError(t, json.Unmarshal([]byte(body), &upd))
	return upd
}

func TestProfileUpdatePolicy_NullMatchingStoredValueIsNoOp(t *testing.T) {
	p := newProfilePolicy()
	target := &domain.User{ID: uuid.New(), Email: "fresh@example.com", Role: domain.RoleAuthenticated}
	self := domain.Actor{ID: target.ID, Role: target.Role}

	bodies := []string{
		`{"name":null,"bio":null,"location":null}`,
		`{"github_profile_url":null,"linkedin_profile_url":null}`,
		`{"Name":null}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			upd := decodeUpdate(t, body)
			assert.False(t, upd.IsEmpty())

			next, changed, err := p.Apply(self, target, upd, false)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.Nil(t, next.Name)
			assert.Nil(t, next.Bio)
		})
	}

	_, changed, err := p.Apply(self, target, decodeUpdate(t, `{"name":null,"bio":null,"location":null}`), true)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestProfileUpdatePolicy_NullRejections(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	self := domain.Actor{ID: target.ID, Role: target.Role}

	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMissing bool
	}{
		{name: "empty object", body: `{}`, wantMissing: true},
		{name: "only unknown keys", body: `{"nickname":null,"age":3}`, wantMissing: true},
		{name: "null over stored name", body: `{"name":null}`, wantField: "name"},
		{name: "null over stored bio", body: `{"bio":null}`, wantField: "bio"},
		{name: "null email", body: `{"email":null}`, wantField: "email"},
		{name: "null role", body: `{"role":null}`, wantField: "role"},
		{name: "empty string is still invalid", body: `{"location":""}`, wantField: "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.Apply(self, target, decodeUpdate(t, tt.body), false)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMissing, ve.Missing)
		})
	}

	assert.Equal(t, "Regular User", *target.Name)
}

func TestProfileUpdatePolicy_RoleGrants(t *testing.T) {
	p := newProfilePolicy()

	tests := []struct {
		name       string
		actorRole  domain.Role
		targetRole domain.Role
		newRole    string
		wantErr    error
	}{
		{name: "admin grants admin", actorRole: domain.RoleAdmin, targetRole: domain.RoleAuthenticated, newRole: "ADMIN"},
		{name: "manager grants manager", actorRole: domain.RoleManager, targetRole: domain.RoleAuthenticated, newRole: "MANAGER"},
		{name: "manager cannot grant admin", actorRole: domain.RoleManager, targetRole: domain.RoleAuthenticated, newRole: "ADMIN", wantErr: domain.ErrRoleNotGrantable},
		{name: "manager cannot demote admin", actorRole: domain.RoleManager, targetRole: domain.RoleAdmin, newRole: "AUTHENTICATED", wantErr: domain.ErrRoleNotGrantable},
		{name: "self promotion is forbidden", actorRole: domain.RoleAuthenticated, targetRole: domain.RoleAuthenticated, newRole: "ADMIN", wantErr: domain.ErrRoleNotGrantable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := profileTarget()
			target.Role = tt.targetRole
			actor := domain.Actor{ID: uuid.New(), Role: tt.actorRole}
			if tt.actorRole == domain.RoleAuthenticated {
				actor.ID = target.ID
			}

			next, changed, err := p.Apply(actor, target, ProfileUpdate{Role: strPtr(tt.newRole)}, false)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrForbidden)
				return
			}
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, domain.Role(tt.newRole), next.Role)
		})
	}
}

func TestProfileUpdatePolicy_EmailNormalized(t *testing.T) {
	p := newProfilePolicy()
	target := profileTarget()
	self := domain.Actor{ID: target.ID, Role: target.Role}

	next, changed, err := p.Apply(self, target, ProfileUpdate{Email: strPtr(" New@Example.COM ")}, false)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "new@example.com", next.Email)
}
