package authtoken

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/elzpil/bookclub/pkg/domain"
)

const (
	// DefaultTokenTTL is the lifetime of an issued bearer token.
	DefaultTokenTTL = 24 * time.Hour
	// DefaultSecret is the compiled-in signing secret. Every service accepts
	// tokens minted under it unless its config overrides the secret, which
	// makes the shared trust domain an explicit deployment decision.
	DefaultSecret = "bookclub-dev-secret-change-me"
)

var (
	// ErrInvalidToken is returned when the signature does not verify or the
	// token structure is malformed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded payload of a bearer token.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates HS256 bearer tokens carrying identity and role.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// New builds a Manager. An empty secret falls back to DefaultSecret.
func New(secret string, ttl time.Duration) *Manager {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		secret = DefaultSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token embedding username, user id, role, issued-at, and expiry.
func (m *Manager) Issue(username, userID string, role domain.UserRole) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature and expiry and returns the claims.
func (m *Manager) Parse(token string) (Claims, error) {
	claims := Claims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unsupported signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, ErrTokenExpired
		}
		return claims, ErrInvalidToken
	}
	if !parsed.Valid || strings.TrimSpace(claims.UserID) == "" {
		return claims, ErrInvalidToken
	}
	return claims, nil
}

// IsExpired reports whether the embedded expiry is in the past.
// Malformed tokens are reported as expired.
func (m *Manager) IsExpired(token string) bool {
	_, err := m.Parse(token)
	return err != nil
}

// ExtractUserID re-parses the token and returns the user id claim.
func (m *Manager) ExtractUserID(token string) (string, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ExtractUsername re-parses the token and returns the username claim.
func (m *Manager) ExtractUsername(token string) (string, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// ExtractRole re-parses the token and returns the role claim.
func (m *Manager) ExtractRole(token string) (domain.UserRole, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return domain.UserRole(claims.Role), nil
}
