package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies session tokens with a single Ed25519 keypair.
// The service is the only verifier of its own tokens, so no JWKS or key
// rotation machinery is needed.
type Codec struct {
	issuer string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
}

// NewCodec generates a fresh ephemeral Ed25519 keypair. Sessions do not
// survive a restart of the session store anyway, so ephemeral keys are the
// default.
func NewCodec(issuer string) (*Codec, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate keypair: %w", err)
	}
	return &Codec{issuer: issuer, key: key, pub: pub}, nil
}

// NewCodecFromPEM loads an Ed25519 private key from a PKCS8 PEM file, for
// deployments that want tokens to stay verifiable across restarts.
func NewCodecFromPEM(issuer, path string) (*Codec, error) {
	pemKey, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read key file: %w", err)
	}

	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return &Codec{
		issuer: issuer,
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
	}, nil
}

// Issuer returns the issuer claim this codec signs and verifies with.
func (c *Codec) Issuer() string { return c.issuer }

// Sign turns claims into a signed compact JWT string.
func (c *Codec) Sign(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(c.key)
}

// Verify parses and validates a compact token string: signature, signing
// method, issuer, and expiry. Returns the embedded claims on success.
func (c *Codec) Verify(raw string) (SessionClaims, error) {
	var claims SessionClaims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("jwtx: unexpected signing method %q", t.Method.Alg())
		}
		return c.pub, nil
	}, jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrExpired
		}
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return SessionClaims{}, err
	}

	return claims, nil
}
