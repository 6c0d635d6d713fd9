// Package auth carries the authenticated admin through a request. The JWT
// middleware builds a Session from the bearer token and stores it in the
// request context; handlers read it back with FromContext.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Role is what an admin may manage.
type Role string

const (
	// RoleAdmin manages every masjid.
	RoleAdmin Role = "admin"
	// RoleMasjidAdmin manages only the masjid named in the session.
	RoleMasjidAdmin Role = "masjid_admin"
)

// Session is the authenticated admin.
type Session struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	MasjidID uuid.UUID `json:"masjid_id,omitempty"`
}

// CanManage reports whether the session may read and write masjidID's data.
func (s Session) CanManage(masjidID uuid.UUID) bool {
	switch s.Role {
	case RoleAdmin:
		return true
	case RoleMasjidAdmin:
		return s.MasjidID != uuid.Nil && s.MasjidID == masjidID
	}
	return false
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Claims is the JWT body.
type Claims struct {
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	MasjidID string `json:"masjid_id,omitempty"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for any token that does not yield a session.
var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 token for s that expires after ttl.
func IssueToken(s Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if s.MasjidID != uuid.Nil {
		claims.MasjidID = s.MasjidID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueToken: %w", err)
	}
	return signed, nil
}

// ParseToken verifies raw and returns the session it describes.
func ParseToken(raw, secret string) (Session, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Session{}, fmt.Errorf("auth.ParseToken: %w", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("auth.ParseToken: subject: %w", ErrInvalidToken)
	}
	s := Session{UserID: userID, Email: claims.Email, Role: claims.Role}

	switch s.Role {
	case RoleAdmin:
	case RoleMasjidAdmin:
		id, err := uuid.Parse(strings.TrimSpace(claims.MasjidID))
		if err != nil {
			return Session{}, fmt.Errorf("auth.ParseToken: masjid_admin without masjid: %w", ErrInvalidToken)
		}
		s.MasjidID = id
	default:
		return Session{}, fmt.Errorf("auth.ParseToken: unknown role %q: %w", s.Role, ErrInvalidToken)
	}
	return s, nil
}

// Authorize returns domain.ErrForbidden unless the session in ctx may manage
// masjidID.
func Authorize(ctx context.Context, masjidID uuid.UUID) error {
	s, ok := FromContext(ctx)
	if !ok || !s.CanManage(masjidID) {
		return fmt.Errorf("auth.Authorize: masjid %s: %w", masjidID, domain.ErrForbidden)
	}
	return nil
}
