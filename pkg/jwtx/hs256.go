package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")

	// ErrInvalidClaim covers every other validation failure (nbf, iat, and
	// library-internal claim errors).
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Codec signs and parses HS256 access tokens with a single symmetric key.
// The key, issuer, and audience come from configuration; a missing key is a
// construction error, not a per-request one.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
}

func NewCodec(secret []byte, issuer, audience string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	if issuer == "" {
		return nil, errors.New("jwtx: issuer must not be empty")
	}
	return &Codec{secret: secret, issuer: issuer, audience: audience}, nil
}

// Issuer returns the configured issuer claim value.
func (c *Codec) Issuer() string { return c.issuer }

// Audience returns the configured audience claim value.
func (c *Codec) Audience() string { return c.audience }

// Sign serializes and signs the claims with HMAC-SHA256.
func (c *Codec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// ParseValid fully validates a token: signature, issuer, and lifetime.
func (c *Codec) ParseValid(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

// ParseExpired validates signature and issuer but NOT lifetime. It exists for
// the refresh flow only: the access token may already be expired and is used
// purely to recover the subject's identity.
func (c *Codec) ParseExpired(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	// WithoutClaimsValidation skips issuer checks too, so enforce it here.
	if claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	return claims, nil
}

func (c *Codec) keyFunc(*jwt.Token) (any, error) {
	return c.secret, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
