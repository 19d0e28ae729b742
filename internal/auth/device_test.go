package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestDeviceFlow_RequestCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/device/code" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["client_id"] != "test-client" {
			t.Errorf("client_id = %q, want test-client", req["client_id"])
		}
		if req["scope"] != "repo" {
			t.Errorf("scope = %q, want repo", req["scope"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev-123",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in":       900,
			"interval":         5,
		})
	}))
	defer server.Close()

	flow := NewDeviceFlow("test-client").WithBaseURL(server.URL)
	code, err := flow.RequestCode(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code.DeviceCode != "dev-123" || code.UserCode != "ABCD-1234" {
		t.Errorf("code = %+v", code)
	}
	if code.Interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", code.Interval)
	}
}

func TestDeviceFlow_RequestCode_NoClientID(t *testing.T) {
	flow := NewDeviceFlow("")
	if _, err := flow.RequestCode(context.Background()); err == nil {
		t.Fatal("expected error without client ID")
	}
}

func TestDeviceFlow_Poll_PendingThenToken(t *testing.T) {
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/oauth/access_token" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["grant_type"] != "urn:ietf:params:oauth:grant-type:device_code" {
			t.Errorf("grant_type = %q", req["grant_type"])
		}

		polls++
		if polls < 3 {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_token"})
	}))
	defer server.Close()

	flow := NewDeviceFlow("test-client").WithBaseURL(server.URL).WithSleep(noSleep)
	token, err := flow.Poll(context.Background(), &DeviceCode{DeviceCode: "dev-123", Interval: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "gho_token" {
		t.Errorf("token = %q, want gho_token", token)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
}

func TestDeviceFlow_Poll_SlowDownGrowsInterval(t *testing.T) {
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "slow_down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_token"})
	}))
	defer server.Close()

	var waits []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	flow := NewDeviceFlow("test-client").WithBaseURL(server.URL).WithSleep(sleep)
	if _, err := flow.Poll(context.Background(), &DeviceCode{DeviceCode: "dev-123", Interval: 5 * time.Second}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// GitHub's protocol: slow_down adds 5 seconds to the interval.
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestDeviceFlow_Poll_TerminalErrors(t *testing.T) {
	tests := []struct {
		apiError string
		want     error
	}{
		{"expired_token", ErrCodeExpired},
		{"access_denied", ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.apiError, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"error": tt.apiError})
			}))
			defer server.Close()

			flow := NewDeviceFlow("test-client").WithBaseURL(server.URL).WithSleep(noSleep)
			_, err := flow.Poll(context.Background(), &DeviceCode{DeviceCode: "dev-123", Interval: time.Second})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeviceFlow_Poll_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flow := NewDeviceFlow("test-client").WithSleep(sleepContext)
	_, err := flow.Poll(ctx, &DeviceCode{DeviceCode: "dev-123", Interval: time.Minute})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
