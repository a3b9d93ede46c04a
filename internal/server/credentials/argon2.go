// Package credentials hashes and verifies account secrets.
//
// New hashes are argon2id in PHC string form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// with standard base64 salt and hash. bcrypt hashes ($2a$, $2b$, $2y$) left
// over from earlier deployments still verify and are reported by NeedsRehash.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const algorithm = "argon2id"

var (
	ErrMalformedHash   = errors.New("malformed secret hash")
	ErrUnsupportedHash = errors.New("unsupported secret hash")
)

// Params are the argon2id cost parameters used for new hashes.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams matches the cost the server uses in production.
var DefaultParams = Params{Memory: 64 * 1024, Time: 1, Threads: 4, SaltLen: 16, KeyLen: 32}

func (p Params) validate() error {
	switch {
	case p.Memory < 8*1024:
		return errors.New("argon2 memory must be at least 8192 KiB")
	case p.Time < 1:
		return errors.New("argon2 time must be at least 1")
	case p.Threads < 1:
		return errors.New("argon2 threads must be at least 1")
	case p.SaltLen < 16:
		return errors.New("argon2 salt must be at least 16 bytes")
	case p.KeyLen < 16:
		return errors.New("argon2 key must be at least 16 bytes")
	}
	return nil
}

// Argon2 is safe for concurrent use.
type Argon2 struct {
	params Params
	dummy  string
}

func NewArgon2(params Params) (*Argon2, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	a := &Argon2{params: params}

	// reference hash for DummyVerify; the secret behind it is never known
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("seed dummy hash: %w", err)
	}
	dummy, err := a.Hash(base64.RawStdEncoding.EncodeToString(seed))
	if err != nil {
		return nil, err
	}
	a.dummy = dummy

	return a, nil
}

// Hash returns the PHC encoding of secret under a fresh random salt.
func (a *Argon2) Hash(secret string) (string, error) {
	salt := make([]byte, a.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, a.params.Time, a.params.Memory, a.params.Threads, a.params.KeyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm, argon2.Version,
		a.params.Memory, a.params.Time, a.params.Threads,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches encoded. A mismatch is (false, nil);
// an error means encoded itself could not be understood.
func (a *Argon2) Verify(secret, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
	}

	h, err := decode(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(secret), h.salt, h.params.Time, h.params.Memory, h.params.Threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}

// DummyVerify spends the same work as a real Verify and always fails. It
// keeps "unknown account" as slow as "wrong secret".
func (a *Argon2) DummyVerify(secret string) {
	_, _ = a.Verify(secret, a.dummy)
}

// NeedsRehash reports whether encoded should be replaced by a fresh Hash:
// bcrypt hashes, unparsable values and argon2 hashes with weaker parameters.
func (a *Argon2) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	h, err := decode(encoded)
	if err != nil {
		return true
	}
	return h.params.Memory < a.params.Memory ||
		h.params.Time < a.params.Time ||
		h.params.Threads < a.params.Threads ||
		uint32(len(h.key)) != a.params.KeyLen
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

type decodedHash struct {
	params Params
	salt   []byte
	key    []byte
}

func decode(encoded string) (*decodedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrMalformedHash
	}
	if parts[1] != algorithm {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: argon2 version %d", ErrUnsupportedHash, version)
	}

	var h decodedHash
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, ErrMalformedHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, ErrMalformedHash
		}
		switch k {
		case "m":
			h.params.Memory = uint32(n)
		case "t":
			h.params.Time = uint32(n)
		case "p":
			if n > 255 {
				return nil, ErrMalformedHash
			}
			h.params.Threads = uint8(n)
		default:
			return nil, ErrMalformedHash
		}
	}
	if h.params.Memory == 0 || h.params.Time == 0 || h.params.Threads == 0 {
		return nil, ErrMalformedHash
	}

	var err error
	if h.salt, err = base64.StdEncoding.DecodeString(parts[4]); err != nil || len(h.salt) == 0 {
		return nil, ErrMalformedHash
	}
	if h.key, err = base64.StdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return nil, ErrMalformedHash
	}

	return &h, nil
}
