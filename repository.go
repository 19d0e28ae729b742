package wingadmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DocumentStore is the persistence boundary for catalog documents and image
// blobs. Implementations perform compare-and-swap writes against the remote
// store and own the retry/backoff protocol; the repository never sees a
// version tag except as an opaque string.
type DocumentStore interface {
	// ReadDocument fetches the latest bytes and their version tag.
	// Returns ErrNotFound when the path does not exist.
	ReadDocument(ctx context.Context, path string) (content []byte, tag string, err error)

	// WriteDocument persists content at path, resolving concurrent writes
	// internally. Returns the new version tag.
	WriteDocument(ctx context.Context, path string, content []byte, message string) (tag string, err error)

	// DeleteDocument removes the document at path. A missing document is
	// not an error.
	DeleteDocument(ctx context.Context, path, message string) error
}

// PublicReader is optionally implemented by stores that expose an
// unauthenticated, cache-fronted read path for display-only refreshes.
type PublicReader interface {
	FetchPublished(ctx context.Context, path string) ([]byte, error)
}

// Repository holds the in-memory catalog snapshot and exposes the mutation
// operations. Every mutation stamps lastUpdated, persists the whole
// serialized snapshot, and restores the pre-mutation state if the save
// fails, so the snapshot never diverges from what was durably written.
//
// Callers must not issue overlapping mutation calls against the same
// repository; operations are sequential by contract.
type Repository struct {
	store DocumentStore
	path  string

	catalog *Catalog
	tag     string

	now func() time.Time
}

// NewRepository creates a repository persisting to the given document path.
func NewRepository(store DocumentStore, path string) *Repository {
	return &Repository{
		store: store,
		path:  path,
		now:   time.Now,
	}
}

// Load fetches and deserializes the catalog document, replacing the
// in-memory snapshot. A missing document yields an empty catalog; the first
// save then creates it.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	data, tag, err := r.store.ReadDocument(ctx, r.path)
	if errors.Is(err, ErrNotFound) {
		r.catalog = emptyCatalog()
		r.tag = ""
		return r.catalog.Clone(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if err := ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("load catalog: decode: %w", err)
	}
	if err := CheckIntegrity(&catalog); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	r.catalog = &catalog
	r.tag = tag
	return r.catalog.Clone(), nil
}

// LoadPublished refreshes the snapshot through the store's unauthenticated
// public read path when available, falling back to the authenticated read.
// The version tag is cleared: the published copy is served through a cache
// and its tag is unknown, but the write path re-reads the authoritative tag
// before every attempt anyway.
func (r *Repository) LoadPublished(ctx context.Context) (*Catalog, error) {
	pr, ok := r.store.(PublicReader)
	if !ok {
		return r.Load(ctx)
	}

	data, err := pr.FetchPublished(ctx, r.path)
	if errors.Is(err, ErrNotFound) {
		r.catalog = emptyCatalog()
		r.tag = ""
		return r.catalog.Clone(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	if err := ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("refresh catalog: decode: %w", err)
	}
	if err := CheckIntegrity(&catalog); err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	r.catalog = &catalog
	r.tag = ""
	return r.catalog.Clone(), nil
}

func emptyCatalog() *Catalog {
	return &Catalog{Wings: []Wing{}, Manufacturers: []Manufacturer{}}
}

// Loaded reports whether a snapshot is present.
func (r *Repository) Loaded() bool { return r.catalog != nil }

// Snapshot returns a copy of the current in-memory catalog.
func (r *Repository) Snapshot() *Catalog {
	return r.catalog.Clone()
}

// Tag returns the version tag of the last read or written document.
func (r *Repository) Tag() string { return r.tag }

// Stats summarizes the current snapshot.
func (r *Repository) Stats() CatalogStats {
	if r.catalog == nil {
		return CatalogStats{}
	}
	return CatalogStats{
		WingCount:         len(r.catalog.Wings),
		ManufacturerCount: len(r.catalog.Manufacturers),
		LastUpdated:       r.catalog.LastUpdated,
	}
}

// UpsertWing creates or edits a wing. With an empty params ID the wing ID is
// generated from the manufacturer ID and normalized model name; a non-empty
// ID edits that wing in place. A provided image blob is uploaded before the
// catalog write: if the catalog save then fails the blob is left behind
// (orphaned, documented, never reconciled automatically).
func (r *Repository) UpsertWing(ctx context.Context, p WingParams) (*Wing, error) {
	if r.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}
	if err := ValidateWingParams(r.catalog, p); err != nil {
		return nil, err
	}

	id := p.ID
	editing := id != ""
	if !editing {
		id = GenerateWingID(p.Manufacturer, p.Model)
		if r.catalog.WingByID(id) != nil {
			return nil, &IntegrityError{Entity: "wing", ID: id, Message: "a wing with this ID already exists"}
		}
	} else if r.catalog.WingByID(id) == nil {
		return nil, fmt.Errorf("upsert wing %q: %w", id, ErrWingNotFound)
	}

	manufacturer := r.catalog.ManufacturerByID(p.Manufacturer)

	var imageURL *string
	if p.Image != nil {
		path := ImagePath(id)
		imageURL = &path
	} else if editing {
		imageURL = r.catalog.WingByID(id).ImageURL
	}

	// Serialize absent sizes as [] rather than null; the schema requires
	// an array.
	sizes := p.Sizes
	if sizes == nil {
		sizes = []string{}
	}

	wing := Wing{
		ID:           id,
		Manufacturer: p.Manufacturer,
		Model:        p.Model,
		FullName:     FullName(manufacturer.Name, p.Model),
		Type:         p.Type,
		Sizes:        sizes,
		ImageURL:     imageURL,
		Year:         p.Year,
	}

	// Image upload precedes the catalog write and is not transactional
	// with it.
	if p.Image != nil {
		path := ImagePath(id)
		if _, err := r.store.WriteDocument(ctx, path, p.Image, "Update "+path); err != nil {
			return nil, fmt.Errorf("upload image %s: %w", path, err)
		}
	}

	backup := r.catalog.Clone()
	if editing {
		*r.catalog.WingByID(id) = wing
	} else {
		r.catalog.Wings = append(r.catalog.Wings, wing)
	}

	if err := r.save(ctx, "Update wing catalog"); err != nil {
		r.catalog = backup
		return nil, err
	}
	return &wing, nil
}

// RemoveWing deletes a wing from the catalog, then deletes its image blob
// best-effort. A failure between the catalog write and the blob delete
// leaves an orphaned blob; that window is accepted, not corrected.
func (r *Repository) RemoveWing(ctx context.Context, id string) error {
	if r.catalog == nil {
		return ErrCatalogNotLoaded
	}
	wing := r.catalog.WingByID(id)
	if wing == nil {
		return fmt.Errorf("remove wing %q: %w", id, ErrWingNotFound)
	}
	imageURL := wing.ImageURL

	backup := r.catalog.Clone()
	kept := r.catalog.Wings[:0:0]
	for _, w := range r.catalog.Wings {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	r.catalog.Wings = kept

	if err := r.save(ctx, "Update wing catalog"); err != nil {
		r.catalog = backup
		return err
	}

	if imageURL != nil {
		// Best-effort; an error here orphans the blob.
		_ = r.store.DeleteDocument(ctx, *imageURL, "Delete "+*imageURL)
	}
	return nil
}

// UpsertManufacturer creates or edits a manufacturer. On create, duplicate
// IDs are rejected; an empty ID is generated from the name. On edit, an ID
// change cascades the new ID and recomputed fullName onto every referencing
// wing as part of the same atomic save, and a failed persist reverts the
// manufacturer and all cascaded wings together.
func (r *Repository) UpsertManufacturer(ctx context.Context, p ManufacturerParams) (*Manufacturer, error) {
	if r.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}
	if p.Name == "" {
		return nil, &ValidationError{Field: "Name", Message: "required"}
	}

	if p.PreviousID == "" {
		return r.addManufacturer(ctx, p)
	}
	return r.editManufacturer(ctx, p)
}

func (r *Repository) addManufacturer(ctx context.Context, p ManufacturerParams) (*Manufacturer, error) {
	id := p.ID
	if id == "" {
		id = GenerateManufacturerID(p.Name)
	}
	if err := ValidateNewManufacturer(r.catalog, id); err != nil {
		return nil, err
	}

	manufacturer := Manufacturer{ID: id, Name: p.Name}
	backup := r.catalog.Clone()
	r.catalog.Manufacturers = append(r.catalog.Manufacturers, manufacturer)

	if err := r.save(ctx, "Update wing catalog"); err != nil {
		r.catalog = backup
		return nil, err
	}
	return &manufacturer, nil
}

func (r *Repository) editManufacturer(ctx context.Context, p ManufacturerParams) (*Manufacturer, error) {
	existing := r.catalog.ManufacturerByID(p.PreviousID)
	if existing == nil {
		return nil, fmt.Errorf("edit manufacturer %q: %w", p.PreviousID, ErrManufacturerNotFound)
	}
	newID := p.ID
	if newID == "" {
		newID = p.PreviousID
	}
	if newID != p.PreviousID && r.catalog.ManufacturerByID(newID) != nil {
		return nil, &IntegrityError{
			Entity:  "manufacturer",
			ID:      newID,
			Message: "a manufacturer with this ID already exists",
		}
	}

	backup := r.catalog.Clone()
	existing.ID = newID
	existing.Name = p.Name
	for i := range r.catalog.Wings {
		w := &r.catalog.Wings[i]
		if w.Manufacturer == p.PreviousID {
			w.Manufacturer = newID
			w.FullName = FullName(p.Name, w.Model)
		}
	}

	if err := r.save(ctx, "Update wing catalog"); err != nil {
		r.catalog = backup
		return nil, err
	}
	manufacturer := Manufacturer{ID: newID, Name: p.Name}
	return &manufacturer, nil
}

// RemoveManufacturer deletes a manufacturer. Deletion is rejected with an
// IntegrityError, before any network call, while any wing still references
// the ID.
func (r *Repository) RemoveManufacturer(ctx context.Context, id string) error {
	if r.catalog == nil {
		return ErrCatalogNotLoaded
	}
	if r.catalog.ManufacturerByID(id) == nil {
		return fmt.Errorf("remove manufacturer %q: %w", id, ErrManufacturerNotFound)
	}
	if n := r.catalog.WingCountFor(id); n > 0 {
		return &IntegrityError{
			Entity:  "manufacturer",
			ID:      id,
			Message: fmt.Sprintf("still referenced by %d wing(s)", n),
		}
	}

	backup := r.catalog.Clone()
	kept := r.catalog.Manufacturers[:0:0]
	for _, m := range r.catalog.Manufacturers {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.catalog.Manufacturers = kept

	if err := r.save(ctx, "Update wing catalog"); err != nil {
		r.catalog = backup
		return err
	}
	return nil
}

// save stamps lastUpdated, serializes the snapshot, and writes it through
// the document store. The store resolves concurrent writers; a returned
// error means the retry budget is exhausted and the caller must roll back.
func (r *Repository) save(ctx context.Context, message string) error {
	r.catalog.LastUpdated = r.now().UTC()

	data, err := json.MarshalIndent(r.catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	tag, err := r.store.WriteDocument(ctx, r.path, data, message)
	if err != nil {
		return err
	}
	r.tag = tag
	return nil
}
