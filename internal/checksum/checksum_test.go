package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	abcMD5     = "900150983cd24fb0d6963f7d28e17f72"
	abcSHA1    = "a9993e364706816aba3e25717850c26c9cd0d89d"
	abcSHA256  = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	abcSHA3    = "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"
	abcBlake2b = "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d1" +
		"7d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Sum
		wantErr string
	}{
		{name: "inferred md5", input: abcMD5, want: Sum{"md5", abcMD5}},
		{name: "inferred sha1", input: abcSHA1, want: Sum{"sha1", abcSHA1}},
		{name: "inferred sha256", input: abcSHA256, want: Sum{"sha256", abcSHA256}},
		{name: "typed upper case", input: "SHA256:" + strings.ToUpper(abcSHA256), want: Sum{"sha256", abcSHA256}},
		{name: "typed sha3", input: "sha3-256:" + abcSHA3, want: Sum{"sha3-256", abcSHA3}},
		{name: "unknown type", input: "crc32:deadbeef", wantErr: "unsupported checksum type"},
		{name: "bad hex", input: "md5:xyz", wantErr: "invalid checksum digest"},
		{name: "empty digest", input: "md5:", wantErr: "invalid checksum digest"},
		{name: "wrong length for type", input: "sha256:" + abcMD5, wantErr: "must be 64 hex digits"},
		{name: "uninferable length", input: "abcd", wantErr: "cannot infer checksum type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.img")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	for _, digest := range []string{
		abcMD5,
		"sha1:" + abcSHA1,
		abcSHA256,
		"sha3-256:" + abcSHA3,
		"blake2b-512:" + abcBlake2b,
	} {
		sum, err := Parse(digest)
		require.NoError(t, err)
		assert.NoError(t, sum.Verify(path), sum.String())
	}

	sum, err := Parse("md5:" + strings.Repeat("0", 32))
	require.NoError(t, err)
	assert.ErrorIs(t, sum.Verify(path), ErrMismatch)

	assert.Error(t, sum.Verify(filepath.Join(t.TempDir(), "missing.img")))
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Contains(t, types, "sha256")
	assert.Contains(t, types, "blake2b-512")
	assert.IsIncreasing(t, types)
}
