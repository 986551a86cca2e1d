package helper

import (
	"errors"
	"fmt"
	"time"

	"gym_booking/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidClaims = errors.New("token claims are missing accountId or role")

type TokenClaim struct {
	AccountId uint       `json:"accountId"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(secret string, actor model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaim{
		AccountId: actor.ID,
		Role:      actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseActor verifies an HS256 token and returns the actor it names.
func ParseActor(secret, tokenString string) (model.Actor, error) {
	claims := &TokenClaim{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return model.Actor{}, err
	}
	if !token.Valid || claims.AccountId == 0 || !claims.Role.Valid() {
		return model.Actor{}, ErrInvalidClaims
	}
	return model.Actor{ID: claims.AccountId, Role: claims.Role}, nil
}
