// Package auth provides credential hashing, bearer tokens and caller context helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Params are the Argon2id cost parameters embedded in every hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams follow the OWASP 2024 recommended minimum.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024, // 64 MB
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// PasswordHasher hashes and verifies passwords with fixed Argon2id parameters.
type PasswordHasher struct {
	params Params
}

// NewPasswordHasher creates a hasher using p for new hashes.
func NewPasswordHasher(p Params) *PasswordHasher {
	return &PasswordHasher{params: p}
}

// Hash creates an Argon2id hash of the given password.
// Returns the hash in PHC string format.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches encodedHash.
// Malformed or unsupported hashes never match.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	decoded, err := decodeArgon2(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		decoded.salt,
		decoded.params.Time,
		decoded.params.Memory,
		decoded.params.Threads,
		uint32(len(decoded.key)),
	)

	return subtle.ConstantTimeCompare(computed, decoded.key) == 1
}

// NeedsRehash reports whether encodedHash was produced by a legacy algorithm
// or with weaker parameters than the hasher's current ones.
func (h *PasswordHasher) NeedsRehash(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}

	decoded, err := decodeArgon2(encodedHash)
	if err != nil {
		return true
	}

	p := decoded.params
	return p.Time < h.params.Time ||
		p.Memory < h.params.Memory ||
		p.Threads < h.params.Threads ||
		uint32(len(decoded.key)) < h.params.KeyLen
}

var defaultHasher = NewPasswordHasher(DefaultParams)

// HashPassword hashes password with DefaultParams.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// VerifyPassword checks password against encodedHash in constant time.
func VerifyPassword(password, encodedHash string) bool {
	return defaultHasher.Verify(password, encodedHash)
}

type argon2Hash struct {
	params Params
	salt   []byte
	key    []byte
}

// decodeArgon2 parses a PHC formatted Argon2id hash.
func decodeArgon2(encodedHash string) (*argon2Hash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, ErrInvalidHash
	}

	if parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, ErrInvalidHash
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidHash
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))

	return &argon2Hash{params: p, salt: salt, key: key}, nil
}

func isBcrypt(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
