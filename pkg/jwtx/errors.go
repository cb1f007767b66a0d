package jwtx

import "errors"

var (
	// ErrInvalidToken reports a token that failed signature or structural
	// validation.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrNotYetValid reports a token used before its nbf claim.
	ErrNotYetValid = errors.New("jwtx: token not yet valid")

	// ErrIssuer reports an issuer mismatch.
	ErrIssuer = errors.New("jwtx: unexpected issuer")
)
