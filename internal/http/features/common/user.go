package common

import (
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// UserResponse is the public view of an account. Password hashes, lockout
// counters and verification tokens never leave the service.
type UserResponse struct {
	ID                          string     `json:"id"`
	Email                       string     `json:"email"`
	Role                        string     `json:"role"`
	EmailVerified               bool       `json:"email_verified"`
	IsLocked                    bool       `json:"is_locked"`
	Name                        *string    `json:"name"`
	Bio                         *string    `json:"bio"`
	Location                    *string    `json:"location"`
	GitHubProfileURL            *string    `json:"github_profile_url"`
	LinkedInProfileURL          *string    `json:"linkedin_profile_url"`
	IsProfessional              bool       `json:"is_professional"`
	ProfessionalStatusUpdatedAt *time.Time `json:"professional_status_updated_at"`
	LastLoginAt                 *time.Time `json:"last_login_at"`
	CreatedAt                   time.Time  `json:"created_at"`
	UpdatedAt                   time.Time  `json:"updated_at"`
}

// NewUserResponse converts an account to its response form.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                          u.ID.String(),
		Email:                       u.Email,
		Role:                        u.Role.String(),
		EmailVerified:               u.EmailVerified,
		IsLocked:                    u.IsLocked(),
		Name:                        u.Name,
		Bio:                         u.Bio,
		Location:                    u.Location,
		GitHubProfileURL:            u.GitHubProfileURL,
		LinkedInProfileURL:          u.LinkedInProfileURL,
		IsProfessional:              u.IsProfessional,
		ProfessionalStatusUpdatedAt: u.ProfessionalStatusUpdatedAt,
		LastLoginAt:                 u.LastLoginAt,
		CreatedAt:                   u.CreatedAt,
		UpdatedAt:                   u.UpdatedAt,
	}
}

// PageResponse is one page of accounts.
type PageResponse struct {
	Items []UserResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// NewPageResponse converts a page of accounts to its response form.
func NewPageResponse(p *domain.Page[*domain.User]) PageResponse {
	items := make([]UserResponse, 0, len(p.Items))
	for _, u := range p.Items {
		items = append(items, NewUserResponse(u))
	}
	return PageResponse{Items: items, Total: p.Total, Page: p.Page, Size: p.Size}
}

// ParseUserID parses an account id from a path. Malformed ids map to uuid.Nil,
// which never names an account, so the caller is still authorized before the
// lookup reports not found.
func ParseUserID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
