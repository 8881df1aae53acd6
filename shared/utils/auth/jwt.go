package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"secureweb-backend/shared/utils/keys"
)

const bearerPrefix = "Bearer "

// Claims carried by every issued token
type Claims struct {
	UserID      uint     `json:"id"`
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Identity is the resolved subject of a valid token
type Identity struct {
	ID          uint
	Name        string
	Authorities []string
	JTI         string
	ExpiresAt   time.Time
}

// TokenService issues, verifies and revokes bearer tokens. Revocation is
// backed by a Redis blacklist keyed by token id, so tokens stay stateless
// but a logout is observed immediately on every instance.
type TokenService struct {
	rdb    *redis.Client
	secret []byte
	expire time.Duration
}

// NewTokenService creates a token service. The secret must not be empty;
// callers validate it at startup, not per request.
func NewTokenService(rdb *redis.Client, secret string, expire time.Duration) *TokenService {
	return &TokenService{
		rdb:    rdb,
		secret: []byte(secret),
		expire: expire,
	}
}

// GenerateJWT issues a signed token for the given account. The token id is
// random per issuance so each token can be revoked independently.
func (s *TokenService) GenerateJWT(id uint, name string, authorities []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      id,
		Name:        name,
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ExpireTime returns the expiry of a token issued now
func (s *TokenService) ExpireTime() time.Time {
	return time.Now().Add(s.expire)
}

// ResolveJWT turns a raw Authorization header value into an Identity.
// A missing Bearer prefix, a bad signature, an expired token or a
// blacklisted token id all resolve to nil, never an error.
func (s *TokenService) ResolveJWT(ctx context.Context, headerToken string) *Identity {
	tokenString := convertToken(headerToken)
	if tokenString == "" {
		return nil
	}

	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil
	}

	revoked, err := s.isBlacklisted(ctx, claims.ID)
	if err != nil || revoked {
		return nil
	}

	return &Identity{
		ID:          claims.UserID,
		Name:        claims.Name,
		Authorities: claims.Authorities,
		JTI:         claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
}

// InvalidateJWT revokes the given token by blacklisting its id for the
// remainder of its lifetime. Only the signature is checked so a token close
// to its natural expiry can still be revoked. Returns false when the token
// cannot be verified or its id is already blacklisted.
func (s *TokenService) InvalidateJWT(ctx context.Context, headerToken string) bool {
	tokenString := convertToken(headerToken)
	if tokenString == "" {
		return false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return false
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		// Already expired. A short-lived marker keeps a repeat revoke
		// reporting "nothing to do" without outliving the token by much.
		remaining = time.Second
	}

	ok, err := s.rdb.SetNX(ctx, keys.BlacklistKey(claims.ID), "", remaining).Result()
	if err != nil {
		return false
	}
	return ok
}

func (s *TokenService) parseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return s.secret, nil
}

func (s *TokenService) isBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keys.BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// convertToken strips the Bearer prefix; anything else counts as no token
func convertToken(headerToken string) string {
	if !strings.HasPrefix(headerToken, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(headerToken, bearerPrefix)
}
