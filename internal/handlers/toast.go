package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/web/components/toast"
)

type toastRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Variant     string `form:"variant" json:"variant"`
	Dismissible string `form:"dismissible" json:"dismissible"`
}

// GenericToast returns a Toast component rendered as HTML for HTMX swaps.
// It accepts form posts and the JSON bodies sent by the json-enc extension.
func (h *Handler) GenericToast(c *gin.Context) {
	var req toastRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := toast.ParseVariant(req.Variant)
	duration := 2000
	if v == toast.VariantWarning || v == toast.VariantError {
		duration = 6000
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	_ = toast.Toast(toast.Props{
		Title:       req.Title,
		Description: req.Description,
		Variant:     v,
		Position:    toast.PositionBottomRight,
		Duration:    duration,
		Dismissible: req.Dismissible == "on" || req.Dismissible == "true",
		Icon:        true,
	}).Render(c.Request.Context(), c.Writer)
}
