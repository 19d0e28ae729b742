package wingadmin

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugCharsRe  = regexp.MustCompile(`[^a-z0-9-]`)
)

// GenerateWingID derives a deterministic wing ID from the manufacturer ID
// and the normalized model name: lower-cased, whitespace collapsed to
// hyphens. Used only when no explicit ID is supplied.
func GenerateWingID(manufacturerID, model string) string {
	slug := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(model)), "-")
	return manufacturerID + "-" + slug
}

// GenerateManufacturerID derives a manufacturer ID from its display name:
// lower-cased, whitespace to hyphens, non-slug characters stripped.
func GenerateManufacturerID(name string) string {
	id := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return slugCharsRe.ReplaceAllString(id, "")
}

// FullName recomputes a wing's derived display name from its manufacturer's
// display name and its model.
func FullName(manufacturerName, model string) string {
	return manufacturerName + " " + model
}

// ImagePath returns the conventional relative path of a wing's image blob.
func ImagePath(wingID string) string {
	return "images/" + wingID + ".png"
}

// ValidateWingParams checks a proposed wing change against the current
// snapshot. Pure; no I/O.
func ValidateWingParams(c *Catalog, p WingParams) error {
	if strings.TrimSpace(p.Model) == "" {
		return &ValidationError{Field: "Model", Message: "required"}
	}
	if !p.Type.IsValid() {
		return &ValidationError{Field: "Type", Message: "unknown certification category " + string(p.Type)}
	}
	if c.ManufacturerByID(p.Manufacturer) == nil {
		return &IntegrityError{
			Entity:  "manufacturer",
			ID:      p.Manufacturer,
			Message: "wing references a manufacturer that does not exist",
		}
	}
	return nil
}

// ValidateNewManufacturer rejects duplicate manufacturer IDs. Pure; no I/O.
func ValidateNewManufacturer(c *Catalog, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "ID", Message: "required"}
	}
	if c.ManufacturerByID(id) != nil {
		return &IntegrityError{
			Entity:  "manufacturer",
			ID:      id,
			Message: "a manufacturer with this ID already exists",
		}
	}
	return nil
}

// CheckIntegrity verifies the catalog invariants: unique wing IDs, unique
// manufacturer IDs, and no orphaned wing→manufacturer references.
func CheckIntegrity(c *Catalog) error {
	seenWings := make(map[string]struct{}, len(c.Wings))
	seenManufacturers := make(map[string]struct{}, len(c.Manufacturers))

	for _, m := range c.Manufacturers {
		if _, dup := seenManufacturers[m.ID]; dup {
			return &IntegrityError{Entity: "manufacturer", ID: m.ID, Message: "duplicate ID"}
		}
		seenManufacturers[m.ID] = struct{}{}
	}
	for _, w := range c.Wings {
		if _, dup := seenWings[w.ID]; dup {
			return &IntegrityError{Entity: "wing", ID: w.ID, Message: "duplicate ID"}
		}
		seenWings[w.ID] = struct{}{}
		if _, ok := seenManufacturers[w.Manufacturer]; !ok {
			return &IntegrityError{
				Entity:  "wing",
				ID:      w.ID,
				Message: "references unknown manufacturer " + w.Manufacturer,
			}
		}
	}
	return nil
}
