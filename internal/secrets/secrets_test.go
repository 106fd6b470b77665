package secrets_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/financex/financex/internal/secrets"
)

var testKey = bytes.Repeat([]byte{0x42}, secrets.KeySize)

func TestNewCipher_RejectsShortKey(t *testing.T) {
	if _, err := secrets.NewCipher([]byte("too short")); !errors.Is(err, secrets.ErrInvalidKeyLength) {
		t.Errorf("want ErrInvalidKeyLength, got %v", err)
	}
}

func TestEncryptDecrypt_RoundTrips(t *testing.T) {
	c, err := secrets.NewCipher(testKey)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	const seedPhrase = "ribbon swing vault enter grief tobacco nose trend ridge canal labor echo"
	enc, err := c.Encrypt(seedPhrase)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if enc == seedPhrase {
		t.Fatal("ciphertext equals plaintext")
	}

	dec, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if dec != seedPhrase {
		t.Errorf("round trip = %q, want %q", dec, seedPhrase)
	}
}

func TestEncrypt_NonceVaries(t *testing.T) {
	c, _ := secrets.NewCipher(testKey)
	a, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical ciphertexts")
	}
}

func TestDecrypt_WrongKey_Fails(t *testing.T) {
	c1, _ := secrets.NewCipher(testKey)
	c2, _ := secrets.NewCipher(bytes.Repeat([]byte{0x24}, secrets.KeySize))

	enc, err := c1.Encrypt("private key material")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := c2.Decrypt(enc); err == nil {
		t.Error("decrypt with wrong key succeeded")
	}
}

func TestDecrypt_GarbageInput_Fails(t *testing.T) {
	c, _ := secrets.NewCipher(testKey)
	if _, err := c.Decrypt("not base64 at all!!!"); err == nil {
		t.Error("decrypt of invalid base64 succeeded")
	}
	if _, err := c.Decrypt("AAAA"); err == nil {
		t.Error("decrypt of too-short ciphertext succeeded")
	}
}
