package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role allowed to delete catalog products.
const RoleAdmin = "admin"

var (
	// ErrMissingCredential is returned when no bearer token was presented.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential is returned when the token fails signature, algorithm or expiry checks.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrMissingSubject is returned for a valid token that names no subject.
	ErrMissingSubject = errors.New("token has no subject")
	// ErrSecretRequired is returned when the verifier is built without a secret.
	ErrSecretRequired = errors.New("jwt secret is required")
)

// Claims is the token payload. The subject is read from "id" first and
// falls back to the registered "sub" claim.
type Claims struct {
	ID   SubjectID `json:"id,omitempty"`
	Role string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID is the "id" claim. Issuers send it either as a string or as a
// number; both decode to the same text.
type SubjectID string

func (s *SubjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = SubjectID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id claim must be a string or number: %w", err)
	}
	*s = SubjectID(n.String())
	return nil
}

// Identity is the verified caller.
type Identity struct {
	SubjectID string
	Role      string
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Verifier checks HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify validates token and extracts the caller identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingCredential
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(v.now))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidCredential
	}

	subject := string(claims.ID)
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return Identity{}, ErrMissingSubject
	}
	return Identity{SubjectID: subject, Role: claims.Role}, nil
}

// Issue signs a token for subject. A non-positive ttl produces a token
// without expiry.
func (v *Verifier) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		ID:   SubjectID(subject),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
