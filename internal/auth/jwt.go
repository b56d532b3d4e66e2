package auth

import (
	"errors"
	"fmt"
	"time"

	"dealflow_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess        = "access"
	PurposeCalendarState = "calendar_state"

	accessTokenTTL = 24 * time.Hour
	stateTokenTTL  = 10 * time.Minute
)

var (
	jwtSecret []byte

	ErrSecretNotInitialized = errors.New("jwt secret not initialized")
	ErrWrongPurpose         = errors.New("token issued for another purpose")
)

// InitJWT sets the HMAC secret used for every token the service signs.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

type Claims struct {
	UserID  string          `json:"user_id"`
	Role    models.UserRole `json:"role,omitempty"`
	Purpose string          `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateToken issues an access token. Sessions are issued elsewhere in
// production; this exists for tooling and tests.
func GenerateToken(userID string, role models.UserRole) (string, error) {
	return sign(&Claims{UserID: userID, Role: role, Purpose: PurposeAccess}, accessTokenTTL)
}

// ParseToken verifies a bearer access token.
func ParseToken(tokenString string) (*Claims, error) {
	return parse(tokenString, PurposeAccess)
}

// GenerateStateToken signs the OAuth "state" parameter for a calendar connect.
func GenerateStateToken(userID string) (string, error) {
	return sign(&Claims{UserID: userID, Purpose: PurposeCalendarState}, stateTokenTTL)
}

// ParseStateToken returns the user a calendar callback belongs to.
func ParseStateToken(state string) (string, error) {
	claims, err := parse(state, PurposeCalendarState)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func sign(claims *Claims, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parse(tokenString, purpose string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
