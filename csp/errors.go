package csp

import "errors"

var (
	// ErrUnknownPolicy is returned when a selected policy name is neither
	// declared nor supplied through BuildOptions.Config.
	ErrUnknownPolicy = errors.New("policy is not declared")
	// ErrNonceFinalized is returned when a nonce is read after the
	// response headers carrying it have been written.
	ErrNonceFinalized = errors.New("nonce accessed after the response headers were written")
)
