package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"sync"
	"time"

	"lawdesk/config"

	"github.com/golang-jwt/jwt"
)

var (
	secretOnce sync.Once
	secretKey  []byte
)

// SetSecret overrides the signing secret. Tests use it; production reads JWT_SECRET.
func SetSecret(secret string) {
	secretOnce.Do(func() {})
	secretKey = []byte(secret)
}

func getSecret() []byte {
	secretOnce.Do(func() {
		secret := config.AppConfig.JWTSecret
		if secret == "" {
			secret = os.Getenv("JWT_SECRET")
		}
		if secret == "" {
			secret = "LAWDESK"
		}
		secretKey = []byte(secret)
	})
	return secretKey
}

// Claims carried by an access token.
type Claims struct {
	Subject  string
	Role     string
	LawyerID string
}

// GenerateToken creates a signed JWT for an account. lawyerID is empty for non-lawyers.
func GenerateToken(subject, role, lawyerID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	if lawyerID != "" {
		claims["lid"] = lawyerID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSecret())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getSecret(), nil
	})
}

// ExtractClaims validates tokenString and returns its subject, role and lawyer id.
func ExtractClaims(tokenString string) (*Claims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return nil, errors.New("token does not contain a role")
	}
	lawyerID, _ := claims["lid"].(string)

	return &Claims{Subject: sub, Role: role, LawyerID: lawyerID}, nil
}
