package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
)

// TokenSessionProvider verifies HS256 bearer tokens issued by the login
// service and reads the role claims out of them.
type TokenSessionProvider struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

func NewTokenSessionProvider(secret, issuer string, leeway time.Duration) *TokenSessionProvider {
	return &TokenSessionProvider{
		secret: []byte(secret),
		issuer: issuer,
		leeway: leeway,
		now:    time.Now,
	}
}

// Authenticate always returns an event for the session reducer, even on
// failure, so callers never have to invent one.
func (p *TokenSessionProvider) Authenticate(tokenString string) (Principal, access.SessionEvent, error) {
	if tokenString == "" {
		return Principal{}, access.CredentialCheckFailed{}, ErrMissingToken
	}

	claims, err := p.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Principal{}, access.TokenExpired{}, err
		}
		return Principal{}, access.CredentialCheckFailed{}, err
	}

	role, ok := claims.PrimaryRole()
	if !ok {
		return Principal{Subject: claims.Subject}, access.CredentialCheckFailed{}, ErrNoRole
	}
	return Principal{Subject: claims.Subject, Role: role}, access.CredentialCheckSucceeded{Role: role}, nil
}

// ValidateToken validates a JWT token and returns claims
func (p *TokenSessionProvider) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(p.leeway),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Issue signs a token for subject. The server never logs anyone in; this
// exists for the CLI and tests.
func (p *TokenSessionProvider) Issue(subject string, ttl time.Duration, roles ...access.Role) (string, error) {
	now := p.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	for _, r := range roles {
		claims.Roles = append(claims.Roles, "ROLE_"+string(r))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
