package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"boardroom/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	BoardID string `json:"board_id"`
}

type jwtTokens struct {
	secret []byte
}

// NewJWTTokens returns a TokenIssuer/TokenVerifier pair that signs board
// session tokens with HS256 using the given secret. The token subject is the
// client session id; the board id travels in a private claim.
func NewJWTTokens(secret string) interface {
	domain.TokenIssuer
	domain.TokenVerifier
} {
	return &jwtTokens{secret: []byte(secret)}
}

func (t *jwtTokens) Issue(boardID, sessionID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		BoardID: boardID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (t *jwtTokens) Verify(tokenString string) (string, string, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.BoardID == "" || claims.Subject == "" {
		return "", "", domain.ErrUnauthorized
	}
	return claims.BoardID, claims.Subject, nil
}
