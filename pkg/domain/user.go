package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account.
type User struct {
	ID                          uuid.UUID
	Email                       string
	PasswordHash                string
	Role                        Role
	EmailVerified               bool
	Locked                      bool
	FailedLoginAttempts         int
	Name                        *string
	Bio                         *string
	Location                    *string
	GitHubProfileURL            *string
	LinkedInProfileURL          *string
	VerificationToken           *string
	IsProfessional              bool
	ProfessionalStatusUpdatedAt *time.Time
	LastLoginAt                 *time.Time
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// IsLocked returns true if the account is currently locked.
func (u *User) IsLocked() bool {
	return u.Locked
}

// Clone returns a copy that shares no pointers with u.
func (u *User) Clone() *User {
	c := *u
	c.Name = cloneString(u.Name)
	c.Bio = cloneString(u.Bio)
	c.Location = cloneString(u.Location)
	c.GitHubProfileURL = cloneString(u.GitHubProfileURL)
	c.LinkedInProfileURL = cloneString(u.LinkedInProfileURL)
	c.VerificationToken = cloneString(u.VerificationToken)
	c.ProfessionalStatusUpdatedAt = cloneTime(u.ProfessionalStatusUpdatedAt)
	c.LastLoginAt = cloneTime(u.LastLoginAt)
	return &c
}

// Actor is the identity a request acts as. The zero value is anonymous.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Anonymous is the actor of a request without a valid bearer token.
var Anonymous = Actor{Role: RoleAnonymous}

// IsAnonymous reports whether the actor carries no identity.
func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil || a.Role == "" || a.Role == RoleAnonymous
}

// AccessToken is the bearer credential produced by a successful login.
type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"-"`
}

// Page is a window of a listing plus the size of the full result.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
