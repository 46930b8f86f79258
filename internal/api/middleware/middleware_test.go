package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/common/security"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
)

type staticRevocations struct {
	revoked map[string]bool
	err     error
}

func (s staticRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func decodeKind(t *testing.T, rec *httptest.ResponseRecorder) common.Kind {
	t.Helper()
	var body common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestAuthenticator(t *testing.T) {
	tokens := security.NewTokenManager([]byte("middleware-secret"), time.Hour, "")
	token, err := tokens.GenerateToken("user-1", string(model.RoleStudent))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	expired := security.NewTokenManager([]byte("middleware-secret"), -time.Hour, "")
	oldToken, _ := expired.GenerateToken("user-1", string(model.RoleStudent))

	var seen model.Actor
	var seenToken TokenInfo
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		seenToken, _ = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	build := func(rev RevocationChecker) http.Handler {
		return tokens.Verifier()(Authenticator(rev, logger.Nop())(next))
	}

	tests := []struct {
		name   string
		header string
		rev    RevocationChecker
		status int
	}{
		{"valid", "Bearer " + token, staticRevocations{}, http.StatusNoContent},
		{"missing", "", staticRevocations{}, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", staticRevocations{}, http.StatusUnauthorized},
		{"expired", "Bearer " + oldToken, staticRevocations{}, http.StatusUnauthorized},
		{"revocation store down", "Bearer " + token, staticRevocations{err: errors.New("redis down")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			build(tt.rev).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	if seen.UserID != "user-1" || seen.Role != model.RoleStudent {
		t.Fatalf("actor = %+v", seen)
	}
	if seenToken.ID == "" || seenToken.ExpiresAt.Before(time.Now()) {
		t.Fatalf("token info = %+v", seenToken)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	build(staticRevocations{revoked: map[string]bool{seenToken.ID: true}}).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || decodeKind(t, rec) != common.KindUnauthenticated {
		t.Fatalf("revoked token: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleInstructor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		actor  *model.Actor
		status int
		kind   common.Kind
	}{
		{"instructor", &model.Actor{UserID: "u1", Role: model.RoleInstructor}, http.StatusOK, ""},
		{"student", &model.Actor{UserID: "u2", Role: model.RoleStudent}, http.StatusForbidden, common.KindForbidden},
		{"anonymous", nil, http.StatusUnauthorized, common.KindUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.kind != "" && decodeKind(t, rec) != tt.kind {
				t.Fatalf("kind mismatch: %s", rec.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || decodeKind(t, rec) != common.KindInternal {
		t.Fatalf("recovered response = %d %s", rec.Code, rec.Body.String())
	}
}
