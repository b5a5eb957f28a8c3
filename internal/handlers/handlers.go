package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/compositor"
	"github.com/cristianadrielbraun/sigbake/internal/config"
	"github.com/cristianadrielbraun/sigbake/internal/rebake"
	"github.com/cristianadrielbraun/sigbake/internal/session"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
	"github.com/cristianadrielbraun/sigbake/web/components"
	"github.com/cristianadrielbraun/sigbake/web/pages"
)

const sessionKey = "session"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg        *config.Config
	compositor *compositor.Compositor
	sessions   *session.Store
}

// New returns a Handler whose sessions bake portraits with comp.
func New(cfg *config.Config, comp *compositor.Compositor) *Handler {
	h := &Handler{cfg: cfg, compositor: comp}
	h.sessions = session.NewStore(cfg.Session.TTL, h.newSession)
	return h
}

// Sessions exposes the store so the caller can run its sweeper.
func (h *Handler) Sessions() *session.Store { return h.sessions }

func (h *Handler) newSession(id string) *session.Session {
	card := signature.DefaultCard()
	card.BrandColor = h.cfg.Colors.DefaultBrand
	brand, err := signature.ParseHex(card.BrandColor)
	if err != nil {
		// Validate already rejected this; keep the built in default
		card.BrandColor = signature.DefaultBrandColor
		brand, _ = signature.ParseHex(card.BrandColor)
	}
	card.BrandColor = signature.Hex(brand)
	form := signature.NewForm(card)
	return &session.Session{
		ID:   id,
		Form: form,
		Images: rebake.New(h.compositor, form, brand,
			rebake.WithWarnBytes(h.cfg.Limits.WarnDataURIBytes),
			rebake.WithMaxSourcePixels(h.cfg.Limits.MaxSourcePixels),
		),
	}
}

// WithSession attaches the caller's session, creating one and setting the
// cookie when the request carries none.
func (h *Handler) WithSession() gin.HandlerFunc {
	name := h.cfg.Session.CookieName
	return func(c *gin.Context) {
		id, _ := c.Cookie(name)
		sess, created := h.sessions.GetOrCreate(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, sess.ID, int(h.cfg.Session.TTL.Seconds()), "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// Palette lists the brand colours offered in the editor.
func (h *Handler) Palette(c *gin.Context) {
	c.JSON(http.StatusOK, h.cfg.Palette)
}

// HomePage renders the editor for the caller's session.
func (h *Handler) HomePage(c *gin.Context) {
	size := h.compositor.Spec().Size()
	data := components.EditorData{
		Card:        current(c).Form.Snapshot(),
		Palette:     h.cfg.Palette,
		MaxUploadMB: h.cfg.Limits.MaxUploadBytes >> 20,
		PhotoWidth:  size.X,
		PhotoHeight: size.Y,
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(data).Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
	}
}
