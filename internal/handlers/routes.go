package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/rebake"
)

// Register mounts the editor page and the API on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.WithSession(), h.HomePage)

	api := r.Group("/api")
	{
		api.GET("/palette", h.Palette)
		api.POST("/htmx/toast", h.GenericToast)

		sig := api.Group("/signature", h.WithSession())
		sig.GET("", h.GetSignature)
		sig.PATCH("", h.PatchSignature)
		sig.POST("/photo", h.UploadImage(rebake.Portrait))
		sig.POST("/logo", h.UploadImage(rebake.Logo))
		sig.PUT("/photo-url", h.SetImageURL(rebake.Portrait))
		sig.PUT("/logo-url", h.SetImageURL(rebake.Logo))
		sig.GET("/photo.png", h.PhotoPNG)
		sig.GET("/preview", h.Preview)
		sig.GET("/export", h.Export)
		sig.GET("/qr", h.QRCodeHandler)
	}
}
