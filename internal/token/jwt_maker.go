package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and missing
	// required claims.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrExpiredToken means the token verified fine but its expiry has passed.
	ErrExpiredToken = errors.New("token has expired")
)

// JWTMaker issues and verifies HS256 session tokens. The secret key and
// token lifetime are fixed at construction; rotating the key invalidates
// every outstanding token.
type JWTMaker struct {
	secretKey string
	lifetime  time.Duration
}

func NewJWTMaker(secretKey string, lifetime time.Duration) *JWTMaker {
	return &JWTMaker{
		secretKey: secretKey,
		lifetime:  lifetime,
	}
}

func (maker *JWTMaker) Lifetime() time.Duration {
	return maker.lifetime
}

func (maker *JWTMaker) CreateToken(email string, batchNo *int) (string, *UserClaims, error) {
	claims, err := NewUserClaims(email, batchNo, maker.lifetime)
	if err != nil {
		return "", nil, err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(maker.secretKey))
	if err != nil {
		return "", nil, err
	}
	return tokenStr, claims, nil
}

// VerifyToken checks signature, structure and expiry and returns the
// embedded claims. Expired-but-genuine tokens yield ErrExpiredToken so
// callers can log the two rejection reasons apart.
func (maker *JWTMaker) VerifyToken(tokenStr string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, maker.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractExpiration verifies the signature but skips expiry validation and
// returns the token's own expiration timestamp. Logout needs this: an
// expired token can still be blacklisted without error.
func (maker *JWTMaker) ExtractExpiration(tokenStr string) (time.Time, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenStr, &UserClaims{}, maker.keyFunc)
	if err != nil {
		return time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired compares the embedded expiry to the current time without
// verifying the signature. Callers that need trust must VerifyToken first.
func (maker *JWTMaker) IsExpired(tokenStr string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &UserClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(time.Now())
}

func (maker *JWTMaker) keyFunc(token *jwt.Token) (any, error) {
	_, ok := token.Method.(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(maker.secretKey), nil
}
