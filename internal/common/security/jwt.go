package security

import (
	"errors"
	"time"

	"ffclash/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", []byte(config.AppConfig.JWTSecret), nil)
}

// GenerateToken signs a token for subjectID. tokenType is model.TokenTypeUser or model.TokenTypeAdmin.
func GenerateToken(subjectID, tokenType string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"type": tokenType,
		"exp":  now.Add(config.AppConfig.JWTExpiry()).Unix(),
		"iat":  now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetSubjectFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["sub"].(string)
	if !ok || id == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return id, nil
}

func GetTokenTypeFromClaims(claims jwt.MapClaims) (string, error) {
	t, ok := claims["type"].(string)
	if !ok {
		return "", errors.New("type claim is missing or not a string")
	}
	return t, nil
}
