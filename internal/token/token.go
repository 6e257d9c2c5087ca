package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
)

const issuer = "nurvio-admin"

// Claims represents the signed claims carried by both access and refresh
// tokens: the subject's ID and its role set at issuance time.
type Claims struct {
	SubjectID string   `json:"subjectId"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access and refresh tokens. The two token kinds use
// distinct secrets so a leaked access token cannot be replayed as a refresh
// token.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec creates a codec with the given secrets and validity windows.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the access-token validity window.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the refresh-token validity window.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess creates a signed access token bound to the subject and roles.
func (c *Codec) IssueAccess(subjectID string, roles []string) (string, error) {
	return c.issue(subjectID, roles, c.accessSecret, c.accessTTL)
}

// IssueRefresh creates a signed refresh token bound to the subject and roles.
func (c *Codec) IssueRefresh(subjectID string, roles []string) (string, error) {
	return c.issue(subjectID, roles, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(subjectID string, roles []string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		SubjectID: subjectID,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyAccess parses and validates an access token, returning the claims.
func (c *Codec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.accessSecret)
}

// VerifyRefresh parses and validates a refresh token, returning the claims.
func (c *Codec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.refreshSecret)
}

// verify rejects malformed, tampered, and expired tokens. The jwt library's
// sentinel errors keep the causes distinguishable internally, but callers are
// expected to map any failure to a single unauthorized signal. Expiry is
// exact; no clock-skew leeway is configured.
func (c *Codec) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.SubjectID == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	for _, r := range claims.Roles {
		if !domain.IsValidRole(r) {
			return nil, fmt.Errorf("token carries unknown role %q", r)
		}
	}

	return claims, nil
}
