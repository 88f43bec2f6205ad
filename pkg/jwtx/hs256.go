package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies tokens with a shared secret, the scheme the
// forum backend uses.
type HS256 struct {
	Secret []byte
	Leeway time.Duration
}

func (h HS256) Sign(claims Claims) (string, error) {
	if len(h.Secret) == 0 {
		return "", errors.New("jwtx: empty HS256 secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
}

// Verify checks the signature and time claims of raw.
func (h HS256) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return h.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSig
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if err := claims.ValidateExpiryWithLeeway(h.Leeway, time.Now()); err != nil {
		return nil, err
	}
	return claims, nil
}
