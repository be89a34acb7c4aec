package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer     = "skirmish"
	DefaultTTL = 15 * time.Minute
)

var (
	ErrInvalidRequest = errors.New("invalid auth request")
	ErrInvalidToken   = errors.New("invalid join token")
	ErrDisabled       = errors.New("join tokens are disabled")
)

type IssueRequest struct {
	Nickname string `json:"nickname"`
}

type IssueResponse struct {
	Token     string `json:"token"`
	Nickname  string `json:"nickname"`
	ExpiresAt string `json:"expires_at"`
}

// Tokens issues and verifies HS256 join tokens whose subject is the nickname.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (u Tokens) Enabled() bool { return len(u.Secret) > 0 }

func (u Tokens) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u Tokens) Issue(req IssueRequest) (IssueResponse, error) {
	if !u.Enabled() {
		return IssueResponse{}, ErrDisabled
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return IssueResponse{}, ErrInvalidRequest
	}
	ttl := u.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	jti, err := randomToken(12)
	if err != nil {
		return IssueResponse{}, err
	}

	now := u.now().UTC()
	expires := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   nickname,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.Secret)
	if err != nil {
		return IssueResponse{}, fmt.Errorf("sign join token: %w", err)
	}
	return IssueResponse{
		Token:     signed,
		Nickname:  nickname,
		ExpiresAt: expires.Format(time.RFC3339),
	}, nil
}

// Verify returns the nickname carried by token.
func (u Tokens) Verify(token string) (string, error) {
	if !u.Enabled() {
		return "", ErrDisabled
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidRequest
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return u.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	nickname := strings.TrimSpace(claims.Subject)
	if nickname == "" {
		return "", ErrInvalidToken
	}
	return nickname, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
