package secure

import (
	"bytes"
	"crypto/mlkem"
	"encoding/hex"
	"testing"
)

func TestParseKeys(t *testing.T) {
	k, err := mlkem.GenerateKey768()
	if err != nil {
		t.Fatal(err)
	}

	private, err := ParsePrivateKey(hex.EncodeToString(k.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k.Bytes(), private.Bytes()) {
		t.Error("expected private key to round trip")
	}

	public, err := ParsePublicKey(hex.EncodeToString(k.EncapsulationKey().Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(k.EncapsulationKey().Bytes(), public.Bytes()) {
		t.Error("expected public key to round trip")
	}
}

func TestParseKeysInvalid(t *testing.T) {
	for _, s := range []string{"", "zz", "abcd"} {
		if _, err := ParsePrivateKey(s); err == nil {
			t.Errorf("expected private key %q to be rejected", s)
		}
		if _, err := ParsePublicKey(s); err == nil {
			t.Errorf("expected public key %q to be rejected", s)
		}
	}
}
