// Package srp implements the SRP-6a mutual password proof used by the login
// handshake. The client proves knowledge of the auth secret without sending
// it; the server proves knowledge of the stored verifier. Both sides end up
// with a shared key K that becomes the session id.
package srp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrBadServerValue means the server ephemeral B was invalid (B mod N == 0).
	ErrBadServerValue = errors.New("srp: invalid server public value")
	// ErrBadClientValue means the client ephemeral A was invalid (A mod N == 0).
	ErrBadClientValue = errors.New("srp: invalid client public value")
	// ErrProofMismatch means the other side's proof did not verify.
	ErrProofMismatch = errors.New("srp: proof mismatch")
	// ErrNotReady means a value was requested before the handshake reached it.
	ErrNotReady = errors.New("srp: handshake value not yet available")
)

// GenerateSecret возвращает случайный эфемерный секрет (a или b).
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("srp: failed to generate secret: %w", err)
	}
	return secret, nil
}

// ComputeVerifier computes v = g^x mod N for signup. The server stores the
// verifier in place of anything password-derived.
func ComputeVerifier(group *Group, salt, identity, secret []byte) []byte {
	x := computeX(salt, identity, secret)
	v := new(big.Int).Exp(group.G, x, group.N)
	return pad(v, group.ByteLen())
}

// Client is one login attempt's view of the handshake.
type Client struct {
	group    *Group
	salt     []byte
	identity []byte
	x        *big.Int
	a        *big.Int
	bigA     *big.Int
	bigB     *big.Int
	key      []byte
	m1       []byte
	m2       []byte
}

// NewClient создает клиентскую сторону handshake.
// secret - производный authSecret, clientSecret - свежий случайный эфемерный ключ.
func NewClient(group *Group, salt, identity, secret, clientSecret []byte) *Client {
	a := new(big.Int).SetBytes(clientSecret)
	return &Client{
		group:    group,
		salt:     salt,
		identity: identity,
		x:        computeX(salt, identity, secret),
		a:        a,
		bigA:     new(big.Int).Exp(group.G, a, group.N),
	}
}

// A returns the client public ephemeral value, padded to the group size.
func (c *Client) A() []byte {
	return pad(c.bigA, c.group.ByteLen())
}

// SetB принимает серверное эфемерное значение B и вычисляет общий ключ.
func (c *Client) SetB(b []byte) error {
	bigB := new(big.Int).SetBytes(b)
	if new(big.Int).Mod(bigB, c.group.N).Sign() == 0 {
		return ErrBadServerValue
	}
	c.bigB = bigB

	nLen := c.group.ByteLen()
	u := hashToInt(pad(c.bigA, nLen), pad(bigB, nLen))
	k := hashToInt(pad(c.group.N, nLen), pad(c.group.G, nLen))

	// S = (B - k*g^x) ^ (a + u*x) mod N
	gx := new(big.Int).Exp(c.group.G, c.x, c.group.N)
	kgx := new(big.Int).Mul(k, gx)
	base := new(big.Int).Sub(bigB, kgx)
	base.Mod(base, c.group.N)

	exp := new(big.Int).Mul(u, c.x)
	exp.Add(exp, c.a)

	s := new(big.Int).Exp(base, exp, c.group.N)
	c.key = hashBytes(pad(s, nLen))

	// M1 = H(A | B | S), M2 = H(A | M1 | S)
	c.m1 = hashBytes(pad(c.bigA, nLen), pad(bigB, nLen), pad(s, nLen))
	c.m2 = hashBytes(pad(c.bigA, nLen), c.m1, pad(s, nLen))

	return nil
}

// M1 returns the client proof. Only valid after SetB.
func (c *Client) M1() ([]byte, error) {
	if c.m1 == nil {
		return nil, ErrNotReady
	}
	return c.m1, nil
}

// CheckM2 verifies the server proof. A mismatch also covers the
// wrong-password case: the server derived a different key from its verifier.
func (c *Client) CheckM2(m2 []byte) error {
	if c.m2 == nil {
		return ErrNotReady
	}
	if !hmac.Equal(c.m2, m2) {
		return ErrProofMismatch
	}
	return nil
}

// K returns the shared session key. Only valid after SetB.
func (c *Client) K() ([]byte, error) {
	if c.key == nil {
		return nil, ErrNotReady
	}
	return c.key, nil
}

// Server is the responder side of the handshake, built from a stored verifier.
type Server struct {
	group *Group
	v     *big.Int
	b     *big.Int
	bigB  *big.Int
	bigA  *big.Int
	key   []byte
	m1    []byte
	m2    []byte
}

// NewServer создает серверную сторону handshake из сохраненного verifier.
func NewServer(group *Group, verifier, serverSecret []byte) *Server {
	v := new(big.Int).SetBytes(verifier)
	b := new(big.Int).SetBytes(serverSecret)

	nLen := group.ByteLen()
	k := hashToInt(pad(group.N, nLen), pad(group.G, nLen))

	// B = k*v + g^b mod N
	gb := new(big.Int).Exp(group.G, b, group.N)
	kv := new(big.Int).Mul(k, v)
	bigB := new(big.Int).Add(kv, gb)
	bigB.Mod(bigB, group.N)

	return &Server{group: group, v: v, b: b, bigB: bigB}
}

// B returns the server public ephemeral value.
func (s *Server) B() []byte {
	return pad(s.bigB, s.group.ByteLen())
}

// SetA принимает клиентское эфемерное значение A и вычисляет общий ключ.
func (s *Server) SetA(a []byte) error {
	bigA := new(big.Int).SetBytes(a)
	if new(big.Int).Mod(bigA, s.group.N).Sign() == 0 {
		return ErrBadClientValue
	}
	s.bigA = bigA

	nLen := s.group.ByteLen()
	u := hashToInt(pad(bigA, nLen), pad(s.bigB, nLen))

	// S = (A * v^u) ^ b mod N
	vu := new(big.Int).Exp(s.v, u, s.group.N)
	base := new(big.Int).Mul(bigA, vu)
	base.Mod(base, s.group.N)

	sec := new(big.Int).Exp(base, s.b, s.group.N)
	s.key = hashBytes(pad(sec, nLen))

	s.m1 = hashBytes(pad(bigA, nLen), pad(s.bigB, nLen), pad(sec, nLen))
	s.m2 = hashBytes(pad(bigA, nLen), s.m1, pad(sec, nLen))

	return nil
}

// CheckM1 verifies the client proof and, on success, returns the server
// proof M2 for the client to verify in turn.
func (s *Server) CheckM1(m1 []byte) ([]byte, error) {
	if s.m1 == nil {
		return nil, ErrNotReady
	}
	if !hmac.Equal(s.m1, m1) {
		return nil, ErrProofMismatch
	}
	return s.m2, nil
}

// K returns the shared session key. Only valid after SetA.
func (s *Server) K() ([]byte, error) {
	if s.key == nil {
		return nil, ErrNotReady
	}
	return s.key, nil
}

// computeX derives the private key x = H(salt | H(identity ":" secret)).
func computeX(salt, identity, secret []byte) *big.Int {
	inner := sha256.New()
	inner.Write(identity)
	inner.Write([]byte(":"))
	inner.Write(secret)

	outer := sha256.New()
	outer.Write(salt)
	outer.Write(inner.Sum(nil))

	return new(big.Int).SetBytes(outer.Sum(nil))
}

func hashBytes(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func hashToInt(parts ...[]byte) *big.Int {
	return new(big.Int).SetBytes(hashBytes(parts...))
}

// pad выравнивает значение до длины модуля нулями слева.
func pad(v *big.Int, size int) []byte {
	b := v.Bytes()
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
