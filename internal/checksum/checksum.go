// Package checksum verifies an image against a "[type:]hex" digest.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

var (
	ErrMismatch    = errors.New("checksum mismatch")
	ErrUnsupported = errors.New("unsupported checksum type")
)

var algorithms = map[string]func() hash.Hash{
	"md5":         md5.New,
	"sha1":        sha1.New,
	"sha256":      sha256.New,
	"sha512":      sha512.New,
	"sha3-256":    sha3.New256,
	"sha3-512":    sha3.New512,
	"blake2b-256": newBlake2b256,
	"blake2b-512": newBlake2b512,
}

// byLength picks the algorithm for an untyped digest from its hex length.
var byLength = map[int]string{
	32:  "md5",
	40:  "sha1",
	64:  "sha256",
	128: "sha512",
}

// Sum is an expected digest.
type Sum struct {
	Type string
	Hex  string
}

// Types lists the accepted checksum types.
func Types() []string {
	types := make([]string, 0, len(algorithms))
	for name := range algorithms {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Parse reads "[type:]hex". Without a type the algorithm is guessed from the
// digest length.
func Parse(s string) (Sum, error) {
	s = strings.TrimSpace(s)
	typ, digest, typed := strings.Cut(s, ":")
	if !typed {
		typ, digest = "", s
	}
	typ = strings.ToLower(strings.TrimSpace(typ))
	digest = strings.ToLower(strings.TrimSpace(digest))

	if _, err := hex.DecodeString(digest); err != nil || digest == "" {
		return Sum{}, fmt.Errorf("invalid checksum digest %q", digest)
	}

	if typ == "" {
		name, ok := byLength[len(digest)]
		if !ok {
			return Sum{}, fmt.Errorf("cannot infer checksum type from %d hex digits", len(digest))
		}
		typ = name
	}

	newHash, ok := algorithms[typ]
	if !ok {
		return Sum{}, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupported, typ, strings.Join(Types(), ", "))
	}
	if want := newHash().Size() * 2; len(digest) != want {
		return Sum{}, fmt.Errorf("%s digest must be %d hex digits, got %d", typ, want, len(digest))
	}
	return Sum{Type: typ, Hex: digest}, nil
}

func (s Sum) String() string {
	return s.Type + ":" + s.Hex
}

// Compute hashes r with the algorithm of s and returns the hex digest.
func (s Sum) Compute(r io.Reader) (string, error) {
	newHash, ok := algorithms[s.Type]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, s.Type)
	}
	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify hashes the file at path and compares it with s.
func (s Sum) Verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	got, err := s.Compute(f)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	if got != s.Hex {
		return fmt.Errorf("%w: %s expected %s, got %s", ErrMismatch, s.Type, s.Hex, got)
	}
	return nil
}

func newBlake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func newBlake2b512() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}
