package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.auth.Signup(env.ctx, SignupRequest{Name: "Alice", Email: " Alice@Example.com ", Password: "secret123", Role: "STUDENT"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.Token == "" || res.User.Email != "alice@example.com" {
		t.Fatalf("signup result = %+v", res)
	}
	if res.User.PasswordHash == "secret123" {
		t.Fatal("password stored in clear")
	}

	if _, err := env.auth.Signup(env.ctx, SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123", Role: "STUDENT"}); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate signup err = %v, want conflict", err)
	}
	if _, err := env.auth.Signup(env.ctx, SignupRequest{Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: "ADMIN"}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("bad role err = %v, want validation", err)
	}

	if _, err := env.auth.Login(env.ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, req := range []LoginRequest{
		{Email: "alice@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret123"},
	} {
		if _, err := env.auth.Login(env.ctx, req); !errors.Is(err, common.ErrUnauthenticated) {
			t.Fatalf("login %s err = %v, want unauthenticated", req.Email, err)
		}
	}

	profile, err := env.auth.Profile(env.ctx, res.User.ID)
	if err != nil || profile.ID != res.User.ID {
		t.Fatalf("profile = %+v, %v", profile, err)
	}
	if _, err := env.auth.Profile(env.ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, common.ErrUnauthenticated) {
		t.Fatalf("profile of missing user err = %v, want unauthenticated", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)

	if err := env.auth.Logout(env.ctx, "token-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, err := env.auth.IsRevoked(env.ctx, "token-1")
	if err != nil || !revoked {
		t.Fatalf("revoked = %v, %v", revoked, err)
	}
	revoked, _ = env.auth.IsRevoked(env.ctx, "token-2")
	if revoked {
		t.Fatal("unrelated token reported revoked")
	}
}
