package randx

import "testing"

func TestOTP(t *testing.T) {
	seen := make(map[string]struct{})

	for range 50 {
		otp, err := OTP()
		if err != nil {
			t.Fatal(err)
		}
		if !IsValidOTP(otp) {
			t.Fatalf("OTP() = %q is not a %d digit code", otp, OTPLength)
		}
		seen[otp] = struct{}{}
	}

	if len(seen) < 45 {
		t.Errorf("only %d distinct OTPs out of 50", len(seen))
	}
}

func TestIsValidOTP(t *testing.T) {
	tests := map[string]bool{
		"012345":  true,
		"999999":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
	}
	for in, want := range tests {
		if got := IsValidOTP(in); got != want {
			t.Errorf("IsValidOTP(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConnectionIDUnique(t *testing.T) {
	a, b := ConnectionID(), ConnectionID()
	if a == b || len(a) != 36 {
		t.Errorf("ConnectionID() produced %q and %q", a, b)
	}
}
