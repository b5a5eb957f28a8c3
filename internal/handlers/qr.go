package handlers

import (
	"fmt"
	"image/color"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

const (
	defaultModuleWidth = 8
	maxModuleWidth     = 20
)

// parseColorParam parses a hex colour query value, falling back to
// defaultColor when it is empty or malformed.
func parseColorParam(param string, defaultColor color.RGBA) color.RGBA {
	if param == "" {
		return defaultColor
	}
	c, err := signature.ParseHex(param)
	if err != nil {
		return defaultColor
	}
	return c
}

// QRCodeHandler renders the session's contact card as a vCard QR code PNG.
// Query: fg, bg (hex, default dark grey on white), module (pixels per module),
// download=1 to save it as a file.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	card := current(c).Form.Snapshot()
	if strings.TrimSpace(card.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required for a contact QR code"})
		return
	}

	fgColor := parseColorParam(c.Query("fg"), color.RGBA{0x33, 0x33, 0x33, 255})
	bgColor := parseColorParam(c.Query("bg"), color.RGBA{255, 255, 255, 255})

	module := defaultModuleWidth
	if v := c.Query("module"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxModuleWidth {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("module must be between 1 and %d", maxModuleWidth)})
			return
		}
		module = n
	}

	png, err := signature.QRCode(card, fgColor, bgColor, uint8(module))
	if err != nil {
		log.Printf("[QR] generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code image"})
		return
	}

	c.Header("Cache-Control", "no-store")
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", `attachment; filename="contact-qr.png"`)
	}
	c.Data(http.StatusOK, "image/png", png)
}
