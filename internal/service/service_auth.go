package service

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// authService validates bearer tokens. Issuing them is left to an external
// identity provider sharing the sign key.
type authService struct {
	// tokenSignKey is the HMAC secret tokens are signed with.
	tokenSignKey string

	// tokenIssuer is the required "iss" claim.
	tokenIssuer string

	logger *logger.Logger
}

// NewAuthService returns an AuthService accepting HS256 tokens signed with
// signKey and issued by issuer.
func NewAuthService(signKey, issuer string, logger *logger.Logger) AuthService {
	return &authService{
		tokenSignKey: signKey,
		tokenIssuer:  issuer,
		logger:       logger,
	}
}

// ParseToken validates tokenString and returns it with the owner's id.
// Expired tokens yield ErrTokenIsExpired, anything else invalid yields
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "authService.ParseToken").Msg("token rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Token{}, ErrTokenIsExpired
		}
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
