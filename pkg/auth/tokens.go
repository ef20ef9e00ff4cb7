package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// TokenTypeBearer is returned alongside every access token.
const TokenTypeBearer = "bearer"

// AccessTokenClaims are the JWT claims carried by an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an access token for the given account.
func (s *TokenService) Issue(userID uuid.UUID, role domain.Role) (*domain.AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.AccessToken{
		Token:     signed,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate parses an access token and returns the actor it names.
// Any failure is reported as domain.ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (domain.Actor, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.Join(domain.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, domain.ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, domain.ErrInvalidToken
	}

	return domain.Actor{ID: userID, Role: role}, nil
}
