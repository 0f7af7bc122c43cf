package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/prospect-pipeline/internal/tenancy"
)

func serveWithAuth(t *testing.T, secret, header string, next http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	CoachJWT(secret)(next).ServeHTTP(rec, req)
	return rec
}

func noop(w http.ResponseWriter, r *http.Request) {}

func TestCoachJWTMissingSecret(t *testing.T) {
	rec := serveWithAuth(t, "", "Bearer "+signedCoachToken(t, "secret", "coach-1"), noop)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestCoachJWTMissingHeader(t *testing.T) {
	rec := serveWithAuth(t, "secret", "", noop)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected WWW-Authenticate header")
	}
}

func TestCoachJWTInvalidToken(t *testing.T) {
	rec := serveWithAuth(t, "secret", "Bearer "+signedCoachToken(t, "wrong", "coach-1"), noop)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestCoachJWTRequiresSubject(t *testing.T) {
	rec := serveWithAuth(t, "secret", "Bearer "+signedCoachToken(t, "secret", ""), noop)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestCoachJWTValidToken(t *testing.T) {
	called := false
	rec := serveWithAuth(t, "secret", "Bearer "+signedCoachToken(t, "secret", "coach-1"), func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CoachClaimsFromContext(r.Context()); !ok {
			t.Fatalf("expected coach claims in context")
		}
		if id, _ := tenancy.CoachIDFromContext(r.Context()); id != "coach-1" {
			t.Fatalf("expected coach-1 in context, got %q", id)
		}
		w.WriteHeader(http.StatusOK)
	})

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func signedCoachToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
