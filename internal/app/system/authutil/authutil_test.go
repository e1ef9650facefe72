package authutil

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"test@example.com", true},
		{"name.surname@company.co.uk", true},
		{"a@b.co", true},
		{"testexample.com", false},
		{"test@@example.com", false},
		{"@example.com", false},
		{"test@example", false},
		{"test@example.", false},
		{"test@.com", false},
		{"te st@example.com", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"secure123", nil},
		{"MyP@ssw0rd", nil},
		{strings.Repeat("a", MaxPasswordLength), nil},
		{"", ErrPasswordTooShort},
		{"abcdefg", ErrPasswordTooShort},
		{strings.Repeat("a", MaxPasswordLength+1), ErrPasswordTooLong},
		{"password", ErrPasswordCommon},
		{"PASSWORD", ErrPasswordCommon},
		{"Football", ErrPasswordCommon},
	}
	for _, tt := range tests {
		if err := ValidatePassword(tt.pw); err != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, err, tt.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	const pw = "SecurePassword123"

	h1, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == pw || h1[0] != '$' {
		t.Errorf("hash %q does not look like bcrypt", h1)
	}
	if h1 == h2 {
		t.Error("expected different hashes for same password (random salt)")
	}

	if !CheckPassword(pw, h1) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("WrongPassword456", h1) {
		t.Error("CheckPassword accepted a wrong password")
	}
	if CheckPassword("", h1) {
		t.Error("CheckPassword accepted an empty password")
	}
	if CheckPassword(pw, "not-a-valid-hash") {
		t.Error("CheckPassword accepted a malformed hash")
	}
}

func TestPasswordRules(t *testing.T) {
	if !strings.Contains(PasswordRules(), "8") {
		t.Errorf("PasswordRules() = %q, want the minimum length", PasswordRules())
	}
}
