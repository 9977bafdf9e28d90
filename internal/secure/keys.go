package secure

import (
	"crypto/mlkem"
	"encoding/hex"
	"fmt"
)

// ParsePrivateKey decodes a hex-encoded ML-KEM-768 seed.
func ParsePrivateKey(s string) (*mlkem.DecapsulationKey768, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("secure: private key: %w", err)
	}

	k, err := mlkem.NewDecapsulationKey768(b)
	if err != nil {
		return nil, fmt.Errorf("secure: private key: %w", err)
	}
	return k, nil
}

// ParsePublicKey decodes a hex-encoded ML-KEM-768 encapsulation key.
func ParsePublicKey(s string) (*mlkem.EncapsulationKey768, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("secure: public key: %w", err)
	}

	k, err := mlkem.NewEncapsulationKey768(b)
	if err != nil {
		return nil, fmt.Errorf("secure: public key: %w", err)
	}
	return k, nil
}
