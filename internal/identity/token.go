package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/qchem/gausscat/internal/errors"
)

// TokenType is the OAuth token_type returned with access tokens.
const TokenType = "Bearer"

// Claims is the access token payload.
type Claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"role,omitempty"`
	Stamp string   `json:"stamp"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller derived from a valid token.
type Principal struct {
	UserID   string
	UserName string
	Roles    []string
	Stamp    string
}

// HasRole compares role names case-insensitively.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := Normalize(role)
	for _, r := range p.Roles {
		if Normalize(r) == want {
			return true
		}
	}
	return false
}

// Token is the response of a successful sign-in.
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenIssuer creates an issuer. lifetime defaults to one hour.
func NewTokenIssuer(secret, issuer string, lifetime time.Duration) *TokenIssuer {
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, lifetime: lifetime, now: time.Now}
}

// Issue signs a token for the principal.
func (t *TokenIssuer) Issue(p Principal) (Token, error) {
	now := t.now()
	claims := Claims{
		Name:  p.UserName,
		Roles: p.Roles,
		Stamp: p.Stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, errors.New(err).
			Component("identity").
			Category(errors.CategoryGeneric).
			Context("operation", "sign_token").
			Build()
	}
	return Token{AccessToken: signed, TokenType: TokenType, ExpiresIn: int64(t.lifetime.Seconds())}, nil
}

// Parse verifies signature, issuer and expiry and returns the principal.
func (t *TokenIssuer) Parse(raw string) (*Principal, error) {
	raw = strings.TrimSpace(raw)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, errors.New(errors.Join(ErrInvalidToken, err)).
			Component("identity").
			Category(errors.CategoryAuthentication).
			Build()
	}
	if claims.Subject == "" {
		return nil, authError(ErrInvalidToken, claims.Name)
	}

	return &Principal{
		UserID:   claims.Subject,
		UserName: claims.Name,
		Roles:    claims.Roles,
		Stamp:    claims.Stamp,
	}, nil
}
