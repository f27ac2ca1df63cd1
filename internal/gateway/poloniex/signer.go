package poloniex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"sync"
	"time"
)

// Signer authenticates tradingApi requests: the form body is signed
// with HMAC-SHA512 and sent alongside the key. Secrets are held as
// []byte so they can be wiped when the client shuts down.
type Signer struct {
	key    []byte
	secret []byte

	mu        sync.Mutex
	lastNonce int64
}

// NewSigner copies the credentials into wipeable storage.
func NewSigner(key, secret string) *Signer {
	return &Signer{
		key:    []byte(key),
		secret: []byte(secret),
	}
}

// Key returns the API key header value.
func (s *Signer) Key() string { return string(s.key) }

// Sign computes the hex HMAC-SHA512 of the form-encoded body.
func (s *Signer) Sign(body string) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// Nonce returns a strictly increasing nonce. The exchange rejects any
// request whose nonce is not greater than the last one it saw.
func (s *Signer) Nonce() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := time.Now().UnixMicro()
	if n <= s.lastNonce {
		n = s.lastNonce + 1
	}
	s.lastNonce = n
	return n
}

// Wipe clears the credentials from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	wipe(s.key)
	wipe(s.secret)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
