package signature

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	darkGray    = "#333333"
	lightGray   = "#666666"
	brokenWhite = "#FAFAFA"

	photoPlaceholder = "https://placehold.co/160x220/f4f4f4/333333.png?text=Photo"
)

var icons = map[string]string{
	"yt": "https://img.icons8.com/material-sharp/24/333333/youtube-play.png",
	"ig": "https://img.icons8.com/material-sharp/24/333333/instagram-new.png",
	"in": "https://img.icons8.com/material-sharp/24/333333/linkedin--v1.png",
	"ph": "https://img.icons8.com/material-sharp/24/ffffff/phone.png",
	"em": "https://img.icons8.com/material-sharp/24/ffffff/mail.png",
	"ad": "https://img.icons8.com/material-sharp/24/ffffff/marker.png",
}

// Layout sizes the photo cell. Baked photos already contain their frame and
// are shown at exactly this size.
type Layout struct {
	PhotoWidth  int
	PhotoHeight int
}

// Render returns the signature as nested tables with inline styles only, the
// subset of HTML that Gmail and Outlook keep intact.
func Render(card Card, layout Layout) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlWriter{}
		writeSignature(b, card, layout)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

type htmlWriter struct {
	strings.Builder
}

func (b *htmlWriter) printf(format string, args ...any) {
	fmt.Fprintf(b, format, args...)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func href(link string) string {
	if link == "" || link == "#" {
		return "#"
	}
	return esc(string(templ.URL(link)))
}

func writeSignature(b *htmlWriter, card Card, layout Layout) {
	brand := card.BrandColor
	if _, err := ParseHex(brand); err != nil {
		brand = DefaultBrandColor
	}
	first, last := splitName(card.Name)

	b.printf(`<table cellpadding="0" cellspacing="0" style="width:100%%;max-width:480px;font-family:Arial, Helvetica, sans-serif;border-collapse:collapse;background-color:%s;border:0"><tbody><tr><td style="vertical-align:top">`, brokenWhite)
	b.printf(`<table cellpadding="0" cellspacing="0" width="100%%" style="border-collapse:collapse;border:0"><tbody><tr>`)

	// social strip
	b.printf(`<td width="30" align="center" style="padding:10px 0;vertical-align:middle;background-color:%s">`, brand)
	for _, s := range []struct{ icon, link string }{
		{"yt", card.Socials.YouTube},
		{"ig", card.Socials.Instagram},
		{"in", card.Socials.LinkedIn},
	} {
		b.printf(`<div style="padding:4px 0"><a href="%s" target="_blank" rel="noreferrer" style="text-decoration:none">`, href(s.link))
		b.printf(`<table cellpadding="0" cellspacing="0" style="border-radius:4px;background-color:#ffffff;border:0"><tbody><tr>`)
		b.printf(`<td align="center" width="18" height="18" style="vertical-align:middle"><img src="%s" width="12" height="12" style="display:block;border:0" alt="%s"></td>`, icons[s.icon], s.icon)
		b.printf(`</tr></tbody></table></a></div>`)
	}
	b.printf(`</td><td style="padding:10px">`)

	// photo and name
	b.printf(`<table align="left" cellpadding="0" cellspacing="0" style="border-collapse:collapse;margin-bottom:10px;border:0"><tbody><tr>`)
	b.printf(`<td width="%d" style="vertical-align:middle">`, layout.PhotoWidth+10)
	writePhoto(b, card.PhotoURL, brand, layout)
	b.printf(`</td><td style="padding:0 10px;vertical-align:middle">`)
	b.printf(`<div style="font-size:15px;font-weight:bold;color:%s;line-height:18px">%s <span style="color:%s">%s</span></div>`, darkGray, esc(first), brand, esc(last))
	b.printf(`<div style="font-size:10px;color:%s;font-weight:bold;margin:2px 0">%s</div>`, darkGray, esc(card.Title))
	b.printf(`<div style="width:20px;height:2px;background-color:%s;margin:5px 0"></div>`, brand)
	b.printf(`<div style="font-size:9px;line-height:11px;color:%s;max-width:130px">%s</div>`, lightGray, esc(card.Description))
	b.printf(`</td></tr></tbody></table>`)

	// divider
	b.printf(`<table align="left" cellpadding="0" cellspacing="0" style="border-collapse:collapse;border:0"><tbody><tr>`)
	b.printf(`<td width="1" style="padding:0;background-color:%s"><div style="width:1px;height:80px;font-size:1px">&nbsp;</div></td>`, brand)
	b.printf(`<td width="15" style="font-size:1px">&nbsp;</td></tr></tbody></table>`)

	// logo and contact rows
	b.printf(`<table align="left" cellpadding="0" cellspacing="0" style="border-collapse:collapse;border:0"><tbody><tr><td style="vertical-align:middle">`)
	b.printf(`<div style="padding-bottom:10px">`)
	if card.LogoURL != "" {
		b.printf(`<img src="%s" style="display:block;max-height:30px;max-width:130px;border:0" alt="Logo">`, esc(card.LogoURL))
	} else {
		b.printf(`<div style="font-size:14px;font-weight:bold;color:%s"><span style="color:%s">De</span>OSGB</div>`, darkGray, brand)
	}
	b.printf(`</div>`)
	for _, row := range []struct {
		icon  string
		lines []string
	}{
		{"ph", []string{card.Phone1, card.Phone2}},
		{"em", []string{card.Email, card.Website}},
		{"ad", []string{card.AddressLine1, card.AddressLine2}},
	} {
		b.printf(`<table cellpadding="0" cellspacing="0" style="margin-bottom:4px;border-collapse:collapse;border:0"><tbody><tr>`)
		b.printf(`<td width="18" style="vertical-align:top"><table cellpadding="0" cellspacing="0" style="border-radius:50%%;background-color:%s;border:0"><tbody><tr>`, brand)
		b.printf(`<td align="center" width="16" height="16" style="vertical-align:middle"><img src="%s" width="10" height="10" style="display:block;border:0" alt="%s"></td>`, icons[row.icon], row.icon)
		b.printf(`</tr></tbody></table></td><td style="font-size:9px;color:%s;padding-left:8px;line-height:11px">`, darkGray)
		for _, line := range row.lines {
			if line != "" {
				b.printf(`<div>%s</div>`, esc(line))
			}
		}
		b.printf(`</td></tr></tbody></table>`)
	}
	b.printf(`</td></tr></tbody></table>`)

	b.printf(`</td></tr></tbody></table></td></tr></tbody></table>`)
}

// writePhoto emits a baked data URI as-is. Linked photos have no frame baked
// in, so they get the rounded-corner table as a best effort.
func writePhoto(b *htmlWriter, src, brand string, layout Layout) {
	if strings.HasPrefix(src, "data:") {
		b.printf(`<img src="%s" width="%d" height="%d" style="display:block;border:0" alt="Profile">`, esc(src), layout.PhotoWidth, layout.PhotoHeight)
		return
	}
	if src == "" {
		src = photoPlaceholder
	}
	b.printf(`<table cellpadding="0" cellspacing="0" style="border-top-right-radius:50px;border-bottom-right-radius:50px;background-color:%s;border:0"><tbody><tr>`, brand)
	b.printf(`<td style="padding:4px 4px 4px 0"><div style="width:%dpx;height:%dpx;border-top-right-radius:45px;border-bottom-right-radius:45px;overflow:hidden;background-color:#eeeeee">`, layout.PhotoWidth-15, layout.PhotoHeight-15)
	b.printf(`<img src="%s" width="%d" height="%d" style="display:block;border:0" alt="Profile"></div></td>`, esc(src), layout.PhotoWidth-15, layout.PhotoHeight-15)
	b.printf(`</tr></tbody></table>`)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
