package out

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dsaboost/internal/modules/identity/domain"
	identityout "dsaboost/internal/modules/identity/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// providerClaims matches the access tokens issued by the hosted auth service.
type providerClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier returns nil when secret is empty.
func NewJWTVerifier(secret, issuer string) identityout.TokenVerifier {
	if secret == "" {
		return nil
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *JWTVerifier) Verify(token string) (domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &providerClaims{}, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, fmt.Errorf("%w: token expired", apperrors.ErrNotSignedIn)
		}
		return domain.Claims{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	claims, ok := parsed.Claims.(*providerClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return domain.Claims{}, fmt.Errorf("%w: token has no subject", apperrors.ErrInvalidInput)
	}
	out := domain.Claims{
		Subject:  claims.Subject,
		Email:    claims.Email,
		FullName: claims.UserMetadata.FullName,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// IssueToken signs a token the way the identity provider does. Used for local
// development and tests.
func IssueToken(secret, subject, email, fullName string, ttl time.Duration) (string, error) {
	claims := providerClaims{Email: email}
	claims.UserMetadata.FullName = fullName
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
