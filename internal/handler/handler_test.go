package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartattend/internal/audit"
	"smartattend/internal/auth"
)

// testRouter wires the handler without a database; endpoints that reach the
// repository are covered by the integration tests.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := New(nil, auth.NewStore(), audit.NewRecorder(nil), nil, "smartattend", "test-key", time.Minute)
	r := gin.New()
	h.Register(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestLoginBuiltinUser(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"email":    "admin@smartattend.ai",
		"password": "admin123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["message"] != "Login successful" {
		t.Fatalf("unexpected body: %v", body)
	}
	user, _ := body["user"].(map[string]any)
	if user["name"] != "Admin" || user["email"] != "admin@smartattend.ai" {
		t.Fatalf("unexpected user: %v", user)
	}

	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("expected an access token")
	}
	claims, err := auth.Parse(token, "test-key", "smartattend")
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Subject != "admin@smartattend.ai" {
		t.Fatalf("unexpected token subject %q", claims.Subject)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"email":    "admin@smartattend.ai",
		"password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false || body["message"] != "Invalid credentials" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRegisterTwice(t *testing.T) {
	r := testRouter(t)
	payload := map[string]string{"name": "Jane Doe", "email": "jane@x.com", "password": "pw"}

	w := doJSON(t, r, http.MethodPost, "/api/register", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/register", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second register: expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "User already exists" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	r := testRouter(t)

	for _, payload := range []map[string]string{
		{"email": "jane@x.com", "password": "pw"},
		{"name": "Jane", "password": "pw"},
		{"name": "Jane", "email": "jane@x.com"},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/register", payload)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400, got %d", payload, w.Code)
		}
		body := decodeBody(t, w)
		if body["message"] != "All fields are required" {
			t.Fatalf("unexpected message: %v", body["message"])
		}
	}
}

func TestRegisteredUserCanLogin(t *testing.T) {
	r := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"name": "Jane Doe", "email": "jane@x.com", "password": "pw",
	})
	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"email": "jane@x.com", "password": "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	user, _ := decodeBody(t, w)["user"].(map[string]any)
	if user["name"] != "Jane Doe" {
		t.Fatalf("expected registered display name, got %v", user["name"])
	}
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/api/students/abc", "/api/courses/-1", "/api/sessions/1.5"} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in     string
		valid  bool
		expect time.Time
	}{
		{"2026-03-02T09:00:00Z", true, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{"2026-03-02T09:00:00+02:00", true, time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("", 2*3600))},
		{"2026-03-02T09:00:00", true, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{"", true, time.Time{}},
		{"yesterday", false, time.Time{}},
		{"2026-03-02", false, time.Time{}},
	}
	for _, tc := range cases {
		got, err := parseTimestamp(tc.in)
		if tc.valid && err != nil {
			t.Fatalf("parseTimestamp(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.valid {
			if err == nil {
				t.Fatalf("parseTimestamp(%q) expected error", tc.in)
			}
			continue
		}
		if !got.Equal(tc.expect) {
			t.Fatalf("parseTimestamp(%q) = %s, want %s", tc.in, got, tc.expect)
		}
	}
}
