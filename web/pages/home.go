package pages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cristianadrielbraun/sigbake/internal/signature"
	"github.com/cristianadrielbraun/sigbake/web/components"
)

type textField struct {
	Key, Label, Value string
}

func cardFieldsOf(card signature.Card) []textField {
	return []textField{
		{"name", "Name", card.Name},
		{"title", "Title", card.Title},
		{"description", "Description", card.Description},
		{"phone1", "Phone", card.Phone1},
		{"phone2", "Mobile", card.Phone2},
		{"email", "Email", card.Email},
		{"website", "Website", card.Website},
		{"addressLine1", "Address", card.AddressLine1},
		{"addressLine2", "Address (line 2)", card.AddressLine2},
	}
}

// socialFieldsOf lists the strip links. Keys are the ones PATCH accepts
// inside the socials object.
func socialFieldsOf(s signature.Socials) []textField {
	return []textField{
		{"youtube", "YouTube", s.YouTube},
		{"instagram", "Instagram", s.Instagram},
		{"linkedin", "LinkedIn", s.LinkedIn},
	}
}

func photoHint(data components.EditorData) string {
	return fmt.Sprintf("Framed at %d×%d px.", data.PhotoWidth, data.PhotoHeight)
}

func uploadHint(hint string, maxMB int64) string {
	return fmt.Sprintf("%s Up to %d MB.", hint, maxMB)
}

func isActive(s signature.Swatch, active string) bool {
	return strings.EqualFold(s.Code, active)
}

func swatchVals(code string) string {
	b, _ := json.Marshal(map[string]string{"brandColor": code})
	return string(b)
}
