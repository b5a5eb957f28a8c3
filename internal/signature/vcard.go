package signature

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

var vcardEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

// VCard encodes the card as a vCard 3.0 contact.
func VCard(card Card) string {
	first, last := splitName(card.Name)
	e := vcardEscaper.Replace

	var b strings.Builder
	line := func(prefix, value string) {
		if value != "" {
			b.WriteString(prefix + value + "\r\n")
		}
	}
	b.WriteString("BEGIN:VCARD\r\nVERSION:3.0\r\n")
	b.WriteString("N:" + e(last) + ";" + e(first) + ";;;\r\n")
	b.WriteString("FN:" + e(strings.TrimSpace(card.Name)) + "\r\n")
	line("TITLE:", e(card.Title))
	line("TEL;TYPE=WORK,VOICE:", e(card.Phone1))
	line("TEL;TYPE=CELL:", e(card.Phone2))
	line("EMAIL;TYPE=INTERNET:", e(card.Email))
	line("URL:", e(card.Website))
	if card.AddressLine1 != "" || card.AddressLine2 != "" {
		b.WriteString("ADR;TYPE=WORK:;;" + e(card.AddressLine1) + ";" + e(card.AddressLine2) + ";;;\r\n")
	}
	b.WriteString("END:VCARD\r\n")
	return b.String()
}

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

// QRCode renders the vCard of card as a PNG QR code. moduleWidth is the size
// of one QR module in pixels.
func QRCode(card Card, fg, bg color.Color, moduleWidth uint8) ([]byte, error) {
	qrc, err := qrcode.NewWith(VCard(card), qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart))
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf},
		standard.WithQRWidth(moduleWidth),
		standard.WithBorderWidth(2*int(moduleWidth)),
		standard.WithFgColor(fg),
		standard.WithBgColor(bg),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
