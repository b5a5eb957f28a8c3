package signature

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	betweenTags    = regexp.MustCompile(`>\s+<`)
	htmlComment    = regexp.MustCompile(`<!--.*?-->`)
	reactRootAttrs = regexp.MustCompile(` data-reactroot=""`)
)

// Clean squeezes rendered HTML into the single line form mail clients accept
// when it is pasted as a signature.
func Clean(html string) string {
	html = whitespaceRun.ReplaceAllString(html, " ")
	html = betweenTags.ReplaceAllString(html, "><")
	html = reactRootAttrs.ReplaceAllString(html, "")
	html = htmlComment.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}

// Text is the plain text alternative copied next to the HTML.
func Text(card Card) string {
	var lines []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	add(card.Name)
	add(card.Title)
	add(card.Description)
	add(card.Phone1)
	add(card.Phone2)
	add(card.Email)
	add(card.Website)
	add(card.AddressLine1)
	add(card.AddressLine2)
	return strings.Join(lines, "\n")
}
