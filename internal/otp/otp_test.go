package otp_test

import (
	"testing"

	"github.com/financex/financex/internal/otp"
)

func TestNew_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := otp.New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != otp.Length {
			t.Fatalf("code %q has length %d, want %d", code, len(code), otp.Length)
		}
		if !otp.ValidShape(code) {
			t.Fatalf("generated code %q fails its own shape check", code)
		}
	}
}

func TestValidShape(t *testing.T) {
	valid := []string{"000000", "123456", "999999"}
	for _, s := range valid {
		if !otp.ValidShape(s) {
			t.Errorf("ValidShape(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "12345", "1234567", "12345a", "12 456", "１２３４５６", "-12345"}
	for _, s := range invalid {
		if otp.ValidShape(s) {
			t.Errorf("ValidShape(%q) = true, want false", s)
		}
	}
}
