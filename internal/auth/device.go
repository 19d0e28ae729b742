// Package auth implements the GitHub OAuth device flow as an explicit
// polling task. It acquires a bearer token and hands it to the caller; it
// knows nothing about the catalog or the content store.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Polling terminal errors.
var (
	// ErrCodeExpired is returned when the user code expired before the user
	// approved the device.
	ErrCodeExpired = errors.New("device code expired")

	// ErrAccessDenied is returned when the user declined the authorization.
	ErrAccessDenied = errors.New("access denied")
)

const deviceScope = "repo"

// DeviceCode holds the codes from the device authorization request.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        time.Duration
	ExpiresIn       time.Duration
}

// DeviceFlow drives the OAuth device flow against GitHub.
type DeviceFlow struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewDeviceFlow creates a device flow for the given OAuth app client ID.
func NewDeviceFlow(clientID string) *DeviceFlow {
	return &DeviceFlow{
		clientID:   clientID,
		baseURL:    "https://github.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sleep:      sleepContext,
	}
}

// WithBaseURL overrides the OAuth endpoint (for testing).
func (f *DeviceFlow) WithBaseURL(baseURL string) *DeviceFlow {
	f.baseURL = strings.TrimSuffix(baseURL, "/")
	return f
}

// WithHTTPClient sets a custom http.Client.
func (f *DeviceFlow) WithHTTPClient(client *http.Client) *DeviceFlow {
	f.httpClient = client
	return f
}

// WithSleep overrides the delay primitive (for testing).
func (f *DeviceFlow) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *DeviceFlow {
	f.sleep = sleep
	return f
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

// RequestCode requests device and user codes. The caller displays the user
// code and verification URI, then calls Poll.
func (f *DeviceFlow) RequestCode(ctx context.Context) (*DeviceCode, error) {
	if f.clientID == "" {
		return nil, errors.New("device flow: no OAuth client ID configured")
	}

	body, err := f.post(ctx, "/login/device/code", map[string]string{
		"client_id": f.clientID,
		"scope":     deviceScope,
	})
	if err != nil {
		return nil, fmt.Errorf("device flow: request code: %w", err)
	}

	var code deviceCodeResponse
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("device flow: decode code response: %w", err)
	}
	if code.DeviceCode == "" {
		return nil, errors.New("device flow: empty device code in response")
	}

	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &DeviceCode{
		DeviceCode:      code.DeviceCode,
		UserCode:        code.UserCode,
		VerificationURI: code.VerificationURI,
		Interval:        interval,
		ExpiresIn:       time.Duration(code.ExpiresIn) * time.Second,
	}, nil
}

// Poll exchanges the device code for an access token, polling at the
// server-suggested interval until the user approves, the code expires, or
// the context is cancelled. A slow_down response grows the interval by 5
// seconds per GitHub's protocol.
func (f *DeviceFlow) Poll(ctx context.Context, code *DeviceCode) (string, error) {
	interval := code.Interval
	for {
		if err := f.sleep(ctx, interval); err != nil {
			return "", err
		}

		body, err := f.post(ctx, "/login/oauth/access_token", map[string]string{
			"client_id":   f.clientID,
			"device_code": code.DeviceCode,
			"grant_type":  "urn:ietf:params:oauth:grant-type:device_code",
		})
		if err != nil {
			// Transient; keep polling until the code expires or the
			// context is cancelled.
			continue
		}

		var token accessTokenResponse
		if err := json.Unmarshal(body, &token); err != nil {
			continue
		}

		switch {
		case token.AccessToken != "":
			return token.AccessToken, nil
		case token.Error == "authorization_pending":
			// Still waiting for the user.
		case token.Error == "slow_down":
			interval += 5 * time.Second
		case token.Error == "expired_token":
			return "", ErrCodeExpired
		case token.Error == "access_denied":
			return "", ErrAccessDenied
		default:
			return "", fmt.Errorf("device flow: %s", token.Error)
		}
	}
}

func (f *DeviceFlow) post(ctx context.Context, path string, payload map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
