package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired signals that the presented token is past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid signals that the presented token failed verification.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims is the JWT payload issued to counter operators.
type Claims struct {
	Name     string   `json:"name,omitempty"`
	BranchID string   `json:"branchId,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier verifies operator bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWTManager signs and verifies HS256 operator tokens.
type JWTManager struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	clock    func() time.Time
}

// NewJWTManager builds a manager for the given signing secret.
func NewJWTManager(secret, issuer string, tokenTTL time.Duration, clock func() time.Time) (*JWTManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	if clock == nil {
		clock = time.Now
	}
	return &JWTManager{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(issuer),
		tokenTTL: tokenTTL,
		clock:    clock,
	}, nil
}

var _ TokenVerifier = (*JWTManager)(nil)

// Issue signs a token for the given operator.
func (m *JWTManager) Issue(operatorID, name, branchID string, roles []string) (string, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return "", errors.New("auth: operator id is required")
	}
	now := m.clock().UTC()
	claims := Claims{
		Name:     strings.TrimSpace(name),
		BranchID: strings.TrimSpace(branchID),
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (m *JWTManager) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.clock().UTC() }),
	)
	_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}
