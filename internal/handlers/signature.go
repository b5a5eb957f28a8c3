package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/imageio"
	"github.com/cristianadrielbraun/sigbake/internal/rebake"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
	"github.com/cristianadrielbraun/sigbake/web/components/toast"
)

// changedEvent tells the editor page to refresh the preview.
const changedEvent = "signature-changed"

// imageResponse is returned by every endpoint that touches an image field.
type imageResponse struct {
	Field      signature.Field `json:"field"`
	Value      string          `json:"value"`
	Degraded   bool            `json:"degraded,omitempty"`
	Superseded bool            `json:"superseded,omitempty"`
	Warning    string          `json:"warning,omitempty"`
}

type urlRequest struct {
	URL string `json:"url" form:"url"`
}

func (h *Handler) layout() signature.Layout {
	spec := h.compositor.Spec()
	return signature.Layout{PhotoWidth: spec.Width, PhotoHeight: spec.Height}
}

// GetSignature returns the card of the caller's session.
func (h *Handler) GetSignature(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Form.Snapshot())
}

// PatchSignature merges edited fields. A brand colour change re-bakes the
// last uploaded portrait before responding.
func (h *Handler) PatchSignature(c *gin.Context) {
	var p signature.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	sess := current(c)
	res, err := sess.Edit(c.Request.Context(), p)
	var invalid *signature.InvalidPatchError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Printf("[bake] re-bake after edit failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to re-bake photo"})
		return
	}

	body := gin.H{"card": sess.Form.Snapshot()}
	if res != nil {
		resp := h.respond(c, res)
		body["photo"] = resp
		if resp.Warning != "" {
			body["warning"] = resp.Warning
		}
	} else {
		trigger(c, nil)
	}
	c.JSON(http.StatusOK, body)
}

// UploadImage handles a multipart "file" upload for role.
func (h *Handler) UploadImage(role rebake.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Limits.MaxUploadBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File is larger than %d MB", h.cfg.Limits.MaxUploadBytes>>20)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
			return
		}

		res, err := current(c).Images.Upload(c.Request.Context(), role, data)
		switch {
		case errors.Is(err, imageio.ErrTooManyPixels):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The image has too many pixels, please resize it first"})
			return
		case errors.Is(err, imageio.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The selected file is not a supported image"})
			return
		case err != nil:
			log.Printf("[bake] %s upload failed: %v", role, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
			return
		}
		c.JSON(http.StatusOK, h.respond(c, res))
	}
}

// SetImageURL publishes a pasted image link for role.
func (h *Handler) SetImageURL(role rebake.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req urlRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
			return
		}
		res, err := current(c).Images.SetURL(role, req.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, h.respond(c, res))
	}
}

// Preview renders the signature HTML fragment.
func (h *Handler) Preview(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := signature.Render(current(c).Form.Snapshot(), h.layout()).Render(c.Request.Context(), c.Writer); err != nil {
		log.Printf("[preview] render failed: %v", err)
	}
}

// Export returns the single line HTML and the plain text version meant for
// the clipboard. format=html or format=text return just that part.
func (h *Handler) Export(c *gin.Context) {
	card := current(c).Form.Snapshot()
	var buf bytes.Buffer
	if err := signature.Render(card, h.layout()).Render(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render signature"})
		return
	}
	html := signature.Clean(buf.String())
	text := signature.Text(card)

	switch c.Query("format") {
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	case "text":
		c.String(http.StatusOK, text)
	default:
		c.JSON(http.StatusOK, gin.H{"html": html, "text": text, "bytes": len(html)})
	}
}

// PhotoPNG serves the baked portrait so it can be hosted instead of inlined.
func (h *Handler) PhotoPNG(c *gin.Context) {
	photo := current(c).Form.Snapshot().PhotoURL
	if !imageio.IsDataURI(photo) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No uploaded photo"})
		return
	}
	mime, data, err := imageio.ParseDataURI(photo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mime, data)
}

// respond converts res and fires the HTMX events that go with it.
func (h *Handler) respond(c *gin.Context, res *rebake.Result) imageResponse {
	resp := imageResponse{
		Field:      res.Field,
		Value:      res.Value,
		Degraded:   res.Degraded,
		Superseded: res.Superseded,
	}
	var t *toast.Props
	switch {
	case res.Oversized:
		resp.Warning = fmt.Sprintf("The image is %d KB inline. Some mail clients clip signatures this large.", len(res.Value)>>10)
		t = &toast.Props{Title: "Large signature", Description: resp.Warning, Variant: toast.VariantWarning}
	case res.Degraded:
		t = &toast.Props{Title: "Photo not framed", Description: "The image was added without the frame.", Variant: toast.VariantInfo}
	}
	trigger(c, t)
	return resp
}

// trigger sets HX-Trigger so the page refreshes its preview and, when t is
// set, shows a toast.
func trigger(c *gin.Context, t *toast.Props) {
	events := map[string]any{changedEvent: nil}
	if t != nil {
		events["toast"] = map[string]string{
			"title":       t.Title,
			"description": t.Description,
			"variant":     string(t.Variant),
		}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return
	}
	c.Header("HX-Trigger", string(b))
}
