package wingadmin

import "time"

// Catalog is the single shared JSON document holding all wings and
// manufacturers. Wings preserve insertion order (display order);
// manufacturers are unique by ID.
type Catalog struct {
	Wings         []Wing         `json:"wings"`
	Manufacturers []Manufacturer `json:"manufacturers"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// Wing is a single product record in the catalog.
type Wing struct {
	ID           string   `json:"id"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	FullName     string   `json:"fullName"`
	Type         WingType `json:"type"`
	Sizes        []string `json:"sizes"`
	ImageURL     *string  `json:"imageUrl"`
	Year         *int     `json:"year"`
}

// Manufacturer is a named entity referenced by wings via its unique ID.
type Manufacturer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WingType is the certification category of a wing.
type WingType string

const (
	TypeENA WingType = "EN-A"
	TypeENB WingType = "EN-B"
	TypeENC WingType = "EN-C"
	TypeEND WingType = "EN-D"
	TypeCCC WingType = "CCC"
)

// ValidWingTypes returns all valid wing types.
func ValidWingTypes() []WingType {
	return []WingType{TypeENA, TypeENB, TypeENC, TypeEND, TypeCCC}
}

// IsValid checks if the type is a known certification category.
func (t WingType) IsValid() bool {
	for _, valid := range ValidWingTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// WingParams contains parameters for creating or editing a wing.
// An empty ID requests creation with a generated ID; a non-empty ID edits
// the wing in place. Image, when non-nil, replaces the wing's image blob.
type WingParams struct {
	ID           string   `json:"id,omitempty"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Type         WingType `json:"type"`
	Sizes        []string `json:"sizes"`
	Year         *int     `json:"year,omitempty"`
	Image        []byte   `json:"-"`
}

// ManufacturerParams contains parameters for creating or editing a
// manufacturer. PreviousID is empty on create; on edit it names the
// manufacturer being changed, and an ID differing from PreviousID cascades
// onto every referencing wing.
type ManufacturerParams struct {
	PreviousID string `json:"previous_id,omitempty"`
	ID         string `json:"id"`
	Name       string `json:"name"`
}

// CatalogStats summarizes the current snapshot.
type CatalogStats struct {
	WingCount         int       `json:"wing_count"`
	ManufacturerCount int       `json:"manufacturer_count"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Clone returns a deep copy of the catalog. Used to snapshot state before a
// mutation so a failed persist can restore it.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{
		Wings:         make([]Wing, len(c.Wings)),
		Manufacturers: make([]Manufacturer, len(c.Manufacturers)),
		LastUpdated:   c.LastUpdated,
	}
	for i, w := range c.Wings {
		out.Wings[i] = w.clone()
	}
	copy(out.Manufacturers, c.Manufacturers)
	return out
}

func (w Wing) clone() Wing {
	if w.Sizes != nil {
		sizes := make([]string, len(w.Sizes))
		copy(sizes, w.Sizes)
		w.Sizes = sizes
	}
	if w.ImageURL != nil {
		url := *w.ImageURL
		w.ImageURL = &url
	}
	if w.Year != nil {
		year := *w.Year
		w.Year = &year
	}
	return w
}

// WingByID returns the wing with the given ID, or nil.
func (c *Catalog) WingByID(id string) *Wing {
	for i := range c.Wings {
		if c.Wings[i].ID == id {
			return &c.Wings[i]
		}
	}
	return nil
}

// ManufacturerByID returns the manufacturer with the given ID, or nil.
func (c *Catalog) ManufacturerByID(id string) *Manufacturer {
	for i := range c.Manufacturers {
		if c.Manufacturers[i].ID == id {
			return &c.Manufacturers[i]
		}
	}
	return nil
}

// WingCountFor returns how many wings reference the given manufacturer ID.
func (c *Catalog) WingCountFor(manufacturerID string) int {
	n := 0
	for i := range c.Wings {
		if c.Wings[i].Manufacturer == manufacturerID {
			n++
		}
	}
	return n
}
