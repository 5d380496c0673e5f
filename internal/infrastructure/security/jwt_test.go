package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("ops", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateAdminToken(token, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims["sub"] != "ops" {
		t.Fatalf("want=ops got=%v", claims["sub"])
	}
}

func TestAdminTokenRejections(t *testing.T) {
	expired, _ := GenerateAdminToken("ops", "secret", -time.Minute)
	if _, err := ValidateAdminToken(expired, "secret"); err == nil {
		t.Fatalf("want error for expired token")
	}

	valid, _ := GenerateAdminToken("ops", "secret", time.Hour)
	if _, err := ValidateAdminToken(valid, "other"); err == nil {
		t.Fatalf("want error for wrong secret")
	}

	viewer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "viewer", "exp": time.Now().Add(time.Hour).Unix()})
	signed, _ := viewer.SignedString([]byte("secret"))
	if _, err := ValidateAdminToken(signed, "secret"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("want=ErrNotAdmin got=%v", err)
	}
}

func TestGenerateSecureKeyLength(t *testing.T) {
	key, err := GenerateSecureKey(64)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(key) != 64 {
		t.Fatalf("want=64 got=%d", len(key))
	}
	if GenerateULID() == GenerateULID() {
		t.Fatalf("ulids must differ")
	}
}
