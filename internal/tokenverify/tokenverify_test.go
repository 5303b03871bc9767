package tokenverify

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type staticParser struct {
	claims jwt.MapClaims
	err    error
}

func (p *staticParser) Parse(string) (*jwt.Token, jwt.MapClaims, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	return &jwt.Token{Valid: true}, p.claims, nil
}

func TestVerify(t *testing.T) {
	now := time.Now()
	parser := &staticParser{claims: jwt.MapClaims{
		"sub":  "12",
		"exp":  float64(now.Add(time.Minute).Unix()),
		"role": "user",
	}}

	result, err := Verify(parser, "token", func() time.Time { return now })
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.UserID != "12" {
		t.Fatalf("user id: %q", result.UserID)
	}
	if _, ok := result.Claims["sub"]; ok {
		t.Fatal("sub must not leak into claims")
	}
	if result.Claims["role"] != "user" {
		t.Fatalf("claims: %+v", result.Claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	parser := &staticParser{claims: jwt.MapClaims{
		"sub": "12",
		"exp": float64(now.Add(-time.Minute).Unix()),
	}}

	if _, err := Verify(parser, "token", func() time.Time { return now }); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	parser := &staticParser{claims: jwt.MapClaims{
		"exp": float64(time.Now().Add(time.Minute).Unix()),
	}}

	if _, err := Verify(parser, "token", nil); !errors.Is(err, ErrSubjectMissing) {
		t.Fatalf("expected ErrSubjectMissing, got %v", err)
	}
}

func TestVerifyParserError(t *testing.T) {
	parser := &staticParser{err: errors.New("bad signature")}

	if _, err := Verify(parser, "token", nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := Verify(nil, "token", nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("nil parser: expected ErrInvalidToken, got %v", err)
	}
}
