package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("token carries neither mail nor upn")

// Claims are the directory attributes the gateway signs into each token.
type Claims struct {
	Mail       string `json:"mail"`
	UPN        string `json:"upn"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates an HS256 token. Used by the gateway contract tests and the CLI's dev login.
func Issue(secret []byte, issuer string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UPN,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

type Verifier struct {
	secret []byte
	issuer string
	admins AdminSet
}

func NewVerifier(secret []byte, issuer string, adminEmails []string) *Verifier {
	return &Verifier{
		secret: secret,
		issuer: issuer,
		admins: NewAdminSet(adminEmails),
	}
}

// Verify validates the token and returns the caller with admin status resolved.
func (v *Verifier) Verify(token string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Mail == "" && claims.UPN == "" {
		return nil, ErrMissingSubject
	}

	return &Identity{
		Mail:       claims.Mail,
		UPN:        claims.UPN,
		Name:       claims.Name,
		Department: claims.Department,
		JobTitle:   claims.JobTitle,
		Admin:      v.admins.Contains(claims.UPN, claims.Mail),
	}, nil
}
