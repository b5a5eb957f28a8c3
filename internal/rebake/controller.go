// Package rebake keeps the last uploaded portrait of a session and bakes it
// again whenever the brand colour changes.
package rebake

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/cristianadrielbraun/sigbake/internal/compositor"
	"github.com/cristianadrielbraun/sigbake/internal/imageio"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

// Role selects how an uploaded image is treated.
type Role int

const (
	// Portrait uploads are framed and re-baked on colour changes.
	Portrait Role = iota
	// Logo uploads are published verbatim.
	Logo
)

func (r Role) String() string {
	switch r {
	case Portrait:
		return "portrait"
	case Logo:
		return "logo"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Field is the card field a role publishes to.
func (r Role) Field() signature.Field {
	if r == Logo {
		return signature.FieldLogoURL
	}
	return signature.FieldPhotoURL
}

// ParseRole maps "photo"/"portrait" and "logo" to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "photo", "portrait":
		return Portrait, nil
	case "logo":
		return Logo, nil
	}
	return 0, fmt.Errorf("unknown image role %q", s)
}

// Baker flattens a source bitmap into the frame.
type Baker interface {
	Bake(src image.Image, frame color.Color) (*compositor.Baked, error)
}

// Publisher receives every field update the controller produces.
type Publisher interface {
	Apply(signature.Update) error
}

// Result describes one publish attempt.
type Result struct {
	Field signature.Field
	Value string
	// Degraded is set when rendering was unavailable and the original upload
	// was published instead of a bake.
	Degraded bool
	// Oversized is advisory: mail clients may truncate signatures this large.
	Oversized bool
	// Superseded is set when a newer publish landed first and this result was dropped.
	Superseded bool
}

// upload is a decoded portrait together with the bytes it came from. It is
// never mutated after creation.
type upload struct {
	img  image.Image
	raw  []byte
	mime string
}

type memo struct {
	src      *upload
	color    color.RGBA
	value    string
	degraded bool
}

// Controller serializes uploads and colour changes for one card. Bakes run
// outside the lock; each takes a ticket and only the newest ticket publishes.
type Controller struct {
	baker     Baker
	publisher Publisher
	warnBytes int
	maxPixels int

	mu        sync.Mutex
	color     color.RGBA
	last      *upload
	memo      *memo
	ticket    uint64
	published uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithWarnBytes sets the data URI length above which results are flagged Oversized.
// Zero disables the warning.
func WithWarnBytes(n int) Option {
	return func(c *Controller) { c.warnBytes = n }
}

// WithMaxSourcePixels caps the declared size of portrait uploads.
func WithMaxSourcePixels(n int) Option {
	return func(c *Controller) { c.maxPixels = n }
}

// New returns a controller in the empty state.
func New(baker Baker, publisher Publisher, initial color.Color, opts ...Option) *Controller {
	c := &Controller{
		baker:     baker,
		publisher: publisher,
		color:     toRGBA(initial),
		maxPixels: imageio.DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Color returns the frame colour the next bake will use.
func (c *Controller) Color() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// HasUpload reports whether a portrait upload is held for re-baking.
func (c *Controller) HasUpload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last != nil
}

// Upload handles a newly chosen file. Portraits are decoded, remembered and
// baked; logos are checked to be images and published as they are. Undecodable
// input returns imageio.ErrInvalidImage and publishes nothing.
func (c *Controller) Upload(ctx context.Context, role Role, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if role == Logo {
		if !imageio.IsImage(data) {
			return nil, fmt.Errorf("%w: logo is not an image", imageio.ErrInvalidImage)
		}
		res := &Result{Field: signature.FieldLogoURL, Value: imageio.DataURI(imageio.Sniff(data), data)}
		if err := c.publisher.Apply(signature.Update{Field: res.Field, Value: res.Value}); err != nil {
			return nil, err
		}
		c.flagOversized(res)
		return res, nil
	}

	img, mime, err := imageio.DecodeLimit(data, c.maxPixels)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &upload{img: img, raw: data, mime: mime}

	c.mu.Lock()
	c.last = u
	c.memo = nil
	frame := c.color
	t := c.nextTicket()
	c.mu.Unlock()

	return c.bake(u, frame, t)
}

// ColorChange re-bakes the remembered portrait in frame. It returns a nil
// Result when nothing is remembered, leaving a linked photo untouched.
func (c *Controller) ColorChange(ctx context.Context, frame color.Color) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rgba := toRGBA(frame)

	c.mu.Lock()
	c.color = rgba
	u := c.last
	if u == nil {
		c.mu.Unlock()
		return nil, nil
	}
	t := c.nextTicket()
	c.mu.Unlock()

	return c.bake(u, rgba, t)
}

// SetURL publishes a pasted link for role without baking it. For the portrait
// the remembered upload is dropped, so later colour changes keep the link.
func (c *Controller) SetURL(role Role, raw string) (*Result, error) {
	link, err := signature.NormalizeURL(raw)
	if err != nil {
		return nil, err
	}
	res := &Result{Field: role.Field(), Value: link}
	if role == Logo {
		return res, c.publisher.Apply(signature.Update{Field: res.Field, Value: res.Value})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = nil
	c.memo = nil
	c.published = c.nextTicket()
	return res, c.publisher.Apply(signature.Update{Field: res.Field, Value: res.Value})
}

func (c *Controller) nextTicket() uint64 {
	c.ticket++
	return c.ticket
}

func (c *Controller) bake(u *upload, frame color.RGBA, t uint64) (*Result, error) {
	res := &Result{Field: signature.FieldPhotoURL}

	c.mu.Lock()
	m := c.memo
	c.mu.Unlock()

	if m != nil && m.src == u && m.color == frame {
		res.Value, res.Degraded = m.value, m.degraded
	} else {
		baked, err := c.baker.Bake(u.img, frame)
		switch {
		case errors.Is(err, compositor.ErrRenderingUnavailable):
			log.Printf("[bake] %v, publishing original %s upload", err, u.mime)
			res.Value = imageio.DataURI(u.mime, u.raw)
			res.Degraded = true
		case err != nil:
			return nil, err
		default:
			res.Value = baked.DataURI()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t < c.published {
		log.Printf("[bake] dropping result of bake #%d, #%d already published", t, c.published)
		res.Superseded = true
		return res, nil
	}
	if err := c.publisher.Apply(signature.Update{Field: res.Field, Value: res.Value}); err != nil {
		return nil, err
	}
	c.published = t
	if c.last == u {
		c.memo = &memo{src: u, color: frame, value: res.Value, degraded: res.Degraded}
	}
	c.flagOversized(res)
	return res, nil
}

func (c *Controller) flagOversized(res *Result) {
	if c.warnBytes > 0 && len(res.Value) > c.warnBytes {
		res.Oversized = true
		log.Printf("[bake] %s is %d bytes, above the %d byte warning threshold", res.Field, len(res.Value), c.warnBytes)
	}
}

func toRGBA(c color.Color) color.RGBA {
	if c == nil {
		c = color.Black
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xFF}
}
