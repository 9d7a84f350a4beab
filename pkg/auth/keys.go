package auth

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

// LoadPrivateKey reads the integration's RSA private key from a PEM file.
// Both PKCS#1 and PKCS#8 encodings are accepted.
func LoadPrivateKey(fs afero.Fs, path string) (*rsa.PrivateKey, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", path, err)
	}
	return key, nil
}
