package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeVerifier maps one known token to a user ID.
type fakeVerifier struct {
	valid  string
	userID string
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	if token == f.valid {
		return f.userID, nil
	}
	return "", errors.New("invalid token")
}

func runBearer(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := BearerAuth(&fakeVerifier{valid: "good-token", userID: "u1"})(next)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestBearerAuth_ValidToken(t *testing.T) {
	rec, userID := runBearer(t, "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if userID != "u1" {
		t.Errorf("user id in context = %q; want u1", userID)
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	rec, _ := runBearer(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}

func TestBearerAuth_MalformedHeader(t *testing.T) {
	rec, _ := runBearer(t, "good-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}

func TestBearerAuth_RejectedToken(t *testing.T) {
	rec, _ := runBearer(t, "Bearer bad-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserIDFromContext(req.Context()); got != "" {
		t.Errorf("user id from bare context = %q; want empty", got)
	}
}
