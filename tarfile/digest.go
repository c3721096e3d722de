package tarfile

import (
	"crypto/sha1" //nolint:gosec // report format compatibility, not integrity
	"encoding/base64"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

// Digester computes the content digest reported for an extracted file.
type Digester interface {
	Digest(r io.Reader) (string, error)
}

// DigesterFunc adapts a function to a Digester.
type DigesterFunc func(r io.Reader) (string, error)

func (f DigesterFunc) Digest(r io.Reader) (string, error) { return f(r) }

// DefaultDigester reports "sha256:<hex>" digests.
var DefaultDigester = AlgorithmDigester(digest.Canonical)

// AlgorithmDigester reports digests in the OCI "<alg>:<hex>" form.
func AlgorithmDigester(alg digest.Algorithm) Digester {
	return DigesterFunc(func(r io.Reader) (string, error) {
		if !alg.Available() {
			return "", fmt.Errorf("digest algorithm %q unavailable", alg)
		}
		d, err := alg.FromReader(r)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	})
}

// SHA1Base64Digester reports base64-encoded SHA-1 sums.
var SHA1Base64Digester Digester = DigesterFunc(func(r io.Reader) (string, error) {
	h := sha1.New() //nolint:gosec // see import
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
})

// ParseDigester maps a digest name to a Digester.
func ParseDigester(name string) (Digester, error) {
	switch name {
	case "", "sha256":
		return DefaultDigester, nil
	case "sha384":
		return AlgorithmDigester(digest.SHA384), nil
	case "sha512":
		return AlgorithmDigester(digest.SHA512), nil
	case "sha1-base64":
		return SHA1Base64Digester, nil
	default:
		return nil, fmt.Errorf("unknown digest %q", name)
	}
}
