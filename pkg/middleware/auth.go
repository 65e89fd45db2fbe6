package middleware

import (
	"errors"
	"net/http"
	"strings"

	"retreat-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CallerClaims are the claims issued by the platform identity service
type CallerClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// Auth verifies the HS256 bearer token and places the caller on the context
func Auth(config utils.AuthConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(config.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := parseCaller(parser, secret, r)
			if err != nil {
				logger.Warn("Rejected caller token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseUnauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetCallerContext(r.Context(), caller)))
		})
	}
}

func parseCaller(parser *jwt.Parser, secret []byte, r *http.Request) (utils.Caller, error) {
	if len(secret) == 0 {
		return utils.Caller{}, errors.New("token verification key not configured")
	}

	token, ok := bearerToken(r)
	if !ok {
		return utils.Caller{}, errMissingToken
	}

	var claims CallerClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}); err != nil {
		return utils.Caller{}, err
	}

	if claims.Subject == "" {
		return utils.Caller{}, errors.New("token has no subject")
	}

	return utils.Caller{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
