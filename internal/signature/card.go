// Package signature holds the contact card a user edits and renders it as
// email-safe HTML.
package signature

import (
	"fmt"
	"sync"
)

// Socials are the links shown in the brand coloured strip.
type Socials struct {
	YouTube   string `json:"youtube"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Card is the full state of one signature.
type Card struct {
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Phone1       string  `json:"phone1"`
	Phone2       string  `json:"phone2"`
	Email        string  `json:"email"`
	Website      string  `json:"website"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	PhotoURL     string  `json:"photoUrl"`
	LogoURL      string  `json:"logoUrl"`
	BrandColor   string  `json:"brandColor"`
	Socials      Socials `json:"socials"`
}

// DefaultCard is the sample card a new session starts with.
func DefaultCard() Card {
	return Card{
		Name:         "Anna Sumiyati",
		Title:        "Graphic Designer",
		Description:  "Professional designer delivering creative solutions.",
		Phone1:       "0555 123 45 67",
		Email:        "info@de-osgb.com",
		Website:      "www.de-osgb.com",
		AddressLine1: "İstanbul, Türkiye",
		BrandColor:   DefaultBrandColor,
		Socials:      Socials{YouTube: "#", Instagram: "#", LinkedIn: "#"},
	}
}

// Field names an image field that can be published on its own.
type Field string

const (
	FieldPhotoURL Field = "photoUrl"
	FieldLogoURL  Field = "logoUrl"
)

// Update replaces a single image field.
type Update struct {
	Field Field
	Value string
}

// Patch carries user edits; nil fields are left unchanged.
type Patch struct {
	Name         *string           `json:"name"`
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	Phone1       *string           `json:"phone1"`
	Phone2       *string           `json:"phone2"`
	Email        *string           `json:"email"`
	Website      *string           `json:"website"`
	AddressLine1 *string           `json:"addressLine1"`
	AddressLine2 *string           `json:"addressLine2"`
	BrandColor   *string           `json:"brandColor"`
	Socials      map[string]string `json:"socials"`
}

// InvalidPatchError reports a patch that was rejected before any field changed.
type InvalidPatchError struct {
	Err error
}

func (e *InvalidPatchError) Error() string { return "invalid patch: " + e.Err.Error() }

func (e *InvalidPatchError) Unwrap() error { return e.Err }

// Form is the mutable card of one editing session.
type Form struct {
	mu   sync.RWMutex
	card Card
}

// NewForm returns a form holding card.
func NewForm(card Card) *Form {
	return &Form{card: card}
}

// Snapshot returns a copy of the current card.
func (f *Form) Snapshot() Card {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.card
}

// Apply merges a single field update.
func (f *Form) Apply(u Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch u.Field {
	case FieldPhotoURL:
		f.card.PhotoURL = u.Value
	case FieldLogoURL:
		f.card.LogoURL = u.Value
	default:
		return fmt.Errorf("unknown field %q", u.Field)
	}
	return nil
}

// Patch merges p into the card and reports whether the brand colour changed.
// An invalid colour rejects the whole patch.
func (f *Form) Patch(p Patch) (bool, error) {
	var brand string
	if p.BrandColor != nil {
		c, err := ParseHex(*p.BrandColor)
		if err != nil {
			return false, &InvalidPatchError{Err: err}
		}
		brand = Hex(c)
	}
	for key := range p.Socials {
		switch key {
		case "youtube", "instagram", "linkedin":
		default:
			return false, &InvalidPatchError{Err: fmt.Errorf("unknown social network %q", key)}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c := &f.card
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Name, p.Name)
	set(&c.Title, p.Title)
	set(&c.Description, p.Description)
	set(&c.Phone1, p.Phone1)
	set(&c.Phone2, p.Phone2)
	set(&c.Email, p.Email)
	set(&c.Website, p.Website)
	set(&c.AddressLine1, p.AddressLine1)
	set(&c.AddressLine2, p.AddressLine2)
	for key, v := range p.Socials {
		switch key {
		case "youtube":
			c.Socials.YouTube = v
		case "instagram":
			c.Socials.Instagram = v
		case "linkedin":
			c.Socials.LinkedIn = v
		}
	}

	changed := false
	if p.BrandColor != nil && brand != c.BrandColor {
		c.BrandColor = brand
		changed = true
	}
	return changed, nil
}
