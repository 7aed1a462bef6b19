package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// TokenManager issues and verifies the signed session tokens stored in the session cookie.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, issuer: "stocksim", now: time.Now}
}

func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the authenticated user id carried in the subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (tm *TokenManager) Issue(userID int64) (string, time.Time, error) {
	now := tm.now()
	exp := now.Add(tm.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return tok, exp, nil
}

func (tm *TokenManager) Parse(tokenStr string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	uid, err := claims.UserID()
	if err != nil || uid <= 0 {
		return 0, ErrInvalidToken
	}
	return uid, nil
}
