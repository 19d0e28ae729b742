package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paraflightlog/wingadmin"
)

func testClient(serverURL string, token string) *HTTPClient {
	tokens := wingadmin.NoToken
	if token != "" {
		tokens = wingadmin.StaticToken(token)
	}
	return NewHTTPClient(Options{
		Owner:      "paraflightlog",
		Repo:       "paraflightlog-wings",
		Branch:     "main",
		APIBaseURL: serverURL,
		RawBaseURL: serverURL + "/raw",
		Tokens:     tokens,
		Now:        func() time.Time { return time.UnixMilli(1700000000000) },
	})
}

func TestHTTPClient_GetContent_Success(t *testing.T) {
	payload := `{"wings":[],"manufacturers":[],"lastUpdated":"2024-01-01T00:00:00Z"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/paraflightlog/paraflightlog-wings/contents/wings.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %q, want %q", got, "main")
		}
		if got := r.URL.Query().Get("_"); got != "1700000000000" {
			t.Errorf("cache buster _ = %q, want %q", got, "1700000000000")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q, want %q", got, "application/vnd.github+json")
		}

		// The API wraps base64 at 60 characters.
		encoded := base64.StdEncoding.EncodeToString([]byte(payload))
		wrapped := encoded[:32] + "\n" + encoded[32:] + "\n"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"path":     "wings.json",
			"sha":      "abc123",
			"content":  wrapped,
			"encoding": "base64",
		})
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	info, err := client.GetContent(context.Background(), "wings.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SHA != "abc123" {
		t.Errorf("SHA = %q, want %q", info.SHA, "abc123")
	}
	if string(info.Content) != payload {
		t.Errorf("Content = %q, want %q", info.Content, payload)
	}
}

func TestHTTPClient_GetContent_NoTokenOmitsAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sha":     "abc",
			"content": base64.StdEncoding.EncodeToString([]byte("{}")),
		})
	}))
	defer server.Close()

	client := testClient(server.URL, "")
	if _, err := client.GetContent(context.Background(), "wings.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPClient_GetContent_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	_, err := client.GetContent(context.Background(), "missing.json")
	if !errors.Is(err, wingadmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPClient_PutContent_CreateOmitsSHA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, present := req["sha"]; present {
			t.Error("create request must not carry a sha")
		}
		if req["branch"] != "main" {
			t.Errorf("branch = %v, want main", req["branch"])
		}
		if req["message"] == "" {
			t.Error("missing commit message")
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"sha": "new-sha"},
		})
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	sha, err := client.PutContent(context.Background(), "wings.json", []byte("{}"), "", "Update wing catalog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sha != "new-sha" {
		t.Errorf("sha = %q, want %q", sha, "new-sha")
	}
}

func TestHTTPClient_PutContent_UpdateCarriesSHA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["sha"] != "old-sha" {
			t.Errorf("sha = %v, want old-sha", req["sha"])
		}
		decoded, err := base64.StdEncoding.DecodeString(req["content"].(string))
		if err != nil {
			t.Fatalf("content is not base64: %v", err)
		}
		if string(decoded) != "{}" {
			t.Errorf("content = %q, want {}", decoded)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"sha": "newer-sha"},
		})
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	sha, err := client.PutContent(context.Background(), "wings.json", []byte("{}"), "old-sha", "Update wing catalog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sha != "newer-sha" {
		t.Errorf("sha = %q, want %q", sha, "newer-sha")
	}
}

func TestHTTPClient_PutContent_ConflictIsVersionConflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message": "wings.json does not match"}`))
		}))

		client := testClient(server.URL, "test-token")
		_, err := client.PutContent(context.Background(), "wings.json", []byte("{}"), "stale", "Update wing catalog")
		server.Close()

		if !errors.Is(err, wingadmin.ErrVersionConflict) {
			t.Errorf("status %d: expected ErrVersionConflict, got %v", status, err)
		}
		var transportErr *wingadmin.TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("status %d: expected TransportError, got %T", status, err)
		}
		if transportErr.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", transportErr.StatusCode, status)
		}
	}
}

func TestHTTPClient_DeleteContent_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["sha"] != "blob-sha" {
			t.Errorf("sha = %v, want blob-sha", req["sha"])
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	err := client.DeleteContent(context.Background(), "images/ozone-rush-6.png", "blob-sha", "Delete images/ozone-rush-6.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPClient_FetchRaw_Success(t *testing.T) {
	payload := `{"wings":[],"manufacturers":[],"lastUpdated":"2024-01-01T00:00:00Z"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/raw/paraflightlog/paraflightlog-wings/main/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("t"); got != "1700000000000" {
			t.Errorf("cache buster t = %q, want %q", got, "1700000000000")
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("raw read must be unauthenticated, got Authorization %q", got)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	data, err := client.FetchRaw(context.Background(), "wings.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != payload {
		t.Errorf("data = %q, want %q", data, payload)
	}
}

func TestHTTPClient_GetUser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
	}))
	defer server.Close()

	client := testClient(server.URL, "test-token")
	login, err := client.GetUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want %q", login, "octocat")
	}
}

func TestHTTPClient_GetUser_BadCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, "bad-token")
	_, err := client.GetUser(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var transportErr *wingadmin.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if transportErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", transportErr.StatusCode, http.StatusUnauthorized)
	}
}

func TestEncodePath_EscapesSegments(t *testing.T) {
	got := encodePath("images/gin gliders.png")
	want := "images/gin%20gliders.png"
	if got != want {
		t.Errorf("encodePath = %q, want %q", got, want)
	}
}
