package csp

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
)

// Nonce is a per-request random token that is generated on first access.
//
// A request whose handler never reads the nonce gets a policy without one.
// Once the response headers are written the nonce is finalized and any
// further read fails with ErrNonceFinalized, since a nonce used after that
// point is not in the header that was sent.
//
// Nonce is safe for use by the goroutines serving one request.
type Nonce struct {
	mu        sync.Mutex
	value     string
	generated bool
	finalized bool

	generate func() string
}

func NewNonce() *Nonce {
	return &Nonce{generate: randomNonce}
}

// newNonceWith is for tests that need predictable values.
func newNonceWith(generate func() string) *Nonce {
	return &Nonce{generate: generate}
}

func randomNonce() string {
	var b [16]byte
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(b[:])
	return base64.StdEncoding.EncodeToString(b[:])
}

// Generated reports whether the nonce has been read.
func (n *Nonce) Generated() bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generated
}

// Value returns the nonce, generating it on first call.
func (n *Nonce) Value() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.finalized {
		return "", ErrNonceFinalized
	}
	if !n.generated {
		n.value = n.generate()
		n.generated = true
	}
	return n.value, nil
}

// String returns the nonce for use in templates. It panics with
// ErrNonceFinalized when called after Finalize.
func (n *Nonce) String() string {
	v, err := n.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// Finalize freezes the nonce and returns it when it was generated.
// Finalize never generates a nonce.
func (n *Nonce) Finalize() (string, bool) {
	if n == nil {
		return "", false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finalized = true
	return n.value, n.generated
}
