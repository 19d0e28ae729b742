package wingadmin

import (
	"context"
	"errors"
	"testing"
)

// countingStore records whether any network-facing call happened.
type countingStore struct {
	*fakeStore
	calls int
}

func (s *countingStore) ReadDocument(ctx context.Context, path string) ([]byte, string, error) {
	s.calls++
	return s.fakeStore.ReadDocument(ctx, path)
}

func (s *countingStore) WriteDocument(ctx context.Context, path string, content []byte, message string) (string, error) {
	s.calls++
	return s.fakeStore.WriteDocument(ctx, path, content, message)
}

func (s *countingStore) DeleteDocument(ctx context.Context, path, message string) error {
	s.calls++
	return s.fakeStore.DeleteDocument(ctx, path, message)
}

func newTestClient(t *testing.T, tokens TokenSource, store DocumentStore) *Client {
	t.Helper()
	client, err := New(Config{}, tokens, store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_MutationsRequireAuthentication(t *testing.T) {
	store := &countingStore{fakeStore: newFakeStore()}
	client := newTestClient(t, NoToken, store)
	ctx := context.Background()

	if _, err := client.SaveWing(ctx, WingParams{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("SaveWing: expected ErrUnauthenticated, got %v", err)
	}
	if err := client.DeleteWing(ctx, "x"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("DeleteWing: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := client.SaveManufacturer(ctx, ManufacturerParams{Name: "X"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("SaveManufacturer: expected ErrUnauthenticated, got %v", err)
	}
	if err := client.DeleteManufacturer(ctx, "x"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("DeleteManufacturer: expected ErrUnauthenticated, got %v", err)
	}

	// The precondition fails locally; nothing reaches the store.
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0", store.calls)
	}
}

func TestClient_ReadsWorkUnauthenticated(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, NoToken, store)

	catalog, err := client.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if catalog == nil {
		t.Fatal("nil catalog")
	}

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.WingCount != 0 {
		t.Errorf("WingCount = %d, want 0", stats.WingCount)
	}
}

func TestClient_AuthenticatedMutationFlow(t *testing.T) {
	store := newFakeStore()
	client := newTestClient(t, StaticToken("test-token"), store)
	ctx := context.Background()

	m, err := client.SaveManufacturer(ctx, ManufacturerParams{Name: "Ozone"})
	if err != nil {
		t.Fatalf("save manufacturer: %v", err)
	}
	if m.ID != "ozone" {
		t.Errorf("ID = %q, want ozone", m.ID)
	}

	wing, err := client.SaveWing(ctx, WingParams{
		Manufacturer: "ozone",
		Model:        "Rush 6",
		Type:         TypeENB,
		Sizes:        []string{"23"},
	})
	if err != nil {
		t.Fatalf("save wing: %v", err)
	}
	if wing.ID != "ozone-rush-6" {
		t.Errorf("wing ID = %q, want ozone-rush-6", wing.ID)
	}

	if err := client.DeleteWing(ctx, "ozone-rush-6"); err != nil {
		t.Fatalf("delete wing: %v", err)
	}
	if err := client.DeleteManufacturer(ctx, "ozone"); err != nil {
		t.Fatalf("delete manufacturer: %v", err)
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.WingCount != 0 || stats.ManufacturerCount != 0 {
		t.Errorf("stats = %+v, want empty catalog", stats)
	}
}

func TestClient_TokenSourceErrorIsUnauthenticated(t *testing.T) {
	failing := func(context.Context) (string, error) {
		return "", errors.New("keychain locked")
	}
	client := newTestClient(t, failing, newFakeStore())

	_, err := client.SaveManufacturer(context.Background(), ManufacturerParams{Name: "X"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestClient_InvalidConfigRejected(t *testing.T) {
	_, err := New(Config{MaxRetries: -1}, NoToken, newFakeStore())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
