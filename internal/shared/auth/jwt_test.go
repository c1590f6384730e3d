package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := NewJWT("my-secret-key")

	userID := int64(123)
	email := "test@example.com"

	token, err := j.Generate(userID, email)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	claims, err := j.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Validate() got UserID %d, want %d", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("Validate() got Email %s, want %s", claims.Email, email)
	}
}

func TestJWT_TamperedSignature(t *testing.T) {
	j := NewJWT("my-secret-key")
	token, _ := j.Generate(1, "a@b.com")

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + "invalid-signature"

	_, err := j.Validate(tampered)
	if err == nil {
		t.Error("Validate() accepted tampered signature")
	}
}

func TestJWT_TamperedClaims(t *testing.T) {
	j := NewJWT("my-secret-key")
	token, _ := j.Generate(1, "a@b.com")

	parts := strings.Split(token, ".")
	forged := JWTClaims{UserID: 999, Email: "evil@example.com", Iat: time.Now().Unix(), Exp: time.Now().Add(time.Hour).Unix()}
	forgedJSON, _ := json.Marshal(forged)
	parts[1] = base64.RawURLEncoding.EncodeToString(forgedJSON)

	_, err := j.Validate(strings.Join(parts, "."))
	if err == nil {
		t.Error("Validate() accepted token with forged claims")
	}
}

func TestJWT_InvalidFormat(t *testing.T) {
	j := NewJWT("my-secret-key")

	for _, token := range []string{"", "not-a-token", "only.two", "a.b.c.d"} {
		if _, err := j.Validate(token); err == nil {
			t.Errorf("Validate(%q) accepted malformed token", token)
		}
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := NewJWT("my-secret-key")

	// Build a token with an exp in the past, signed with the real secret.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := JWTClaims{UserID: 1, Email: "a@b.com", Iat: time.Now().Add(-2 * time.Hour).Unix(), Exp: time.Now().Add(-time.Hour).Unix()}
	claimsJSON, _ := json.Marshal(claims)
	message := header + "." + base64.RawURLEncoding.EncodeToString(claimsJSON)
	token := message + "." + j.sign(message)

	_, err := j.Validate(token)
	if err == nil {
		t.Error("Validate() accepted expired token")
	}
}

func TestJWT_DifferentSecrets(t *testing.T) {
	token, _ := NewJWT("secret-one").Generate(1, "a@b.com")

	if _, err := NewJWT("secret-two").Validate(token); err == nil {
		t.Error("Validate() accepted token signed with a different secret")
	}
}
