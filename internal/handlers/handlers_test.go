package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/sigbake/internal/config"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// client replays the session cookie like a browser would.
type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies []*http.Cookie
}

func newClient(t *testing.T, mutate func(*config.Config)) *client {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	comp, err := cfg.NewCompositor()
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	New(cfg, comp).Register(r)
	return &client{t: t, r: r}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func (c *client) json(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(path string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.bin")
	if err != nil {
		c.t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) card() signature.Card {
	c.t.Helper()
	w := c.json(http.MethodGet, "/api/signature", nil)
	if w.Code != http.StatusOK {
		c.t.Fatalf("GET /api/signature = %d", w.Code)
	}
	var card signature.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		c.t.Fatal(err)
	}
	return card
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeImageResponse(t *testing.T, w *httptest.ResponseRecorder) imageResponse {
	t.Helper()
	var resp imageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response %s: %v", w.Body.String(), err)
	}
	return resp
}

func TestSessionCookieKeepsState(t *testing.T) {
	c := newClient(t, nil)
	if got := c.card().BrandColor; got != signature.DefaultBrandColor {
		t.Errorf("initial brand colour = %q", got)
	}
	if len(c.cookies) == 0 || c.cookies[0].Name != "sigbake_session" {
		t.Fatalf("no session cookie set: %v", c.cookies)
	}

	w := c.json(http.MethodPatch, "/api/signature", map[string]any{"name": "Ada Lovelace"})
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH = %d: %s", w.Code, w.Body.String())
	}
	if got := c.card().Name; got != "Ada Lovelace" {
		t.Errorf("name = %q", got)
	}

	other := newClient(t, nil)
	other.r = c.r
	if got := other.card().Name; got == "Ada Lovelace" {
		t.Error("a second browser saw the first browser's card")
	}
}

func TestPatchSignature(t *testing.T) {
	c := newClient(t, nil)
	w := c.json(http.MethodPatch, "/api/signature", map[string]any{
		"brandColor": "#a41e34",
		"socials":    map[string]string{"linkedin": "https://linkedin.com/in/ada"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), changedEvent) {
		t.Error("missing HX-Trigger")
	}
	card := c.card()
	if card.BrandColor != "#A41E34" || card.Socials.LinkedIn != "https://linkedin.com/in/ada" {
		t.Errorf("unexpected card %+v", card)
	}

	for _, body := range []string{`{"brandColor":"red"}`, `{"socials":{"myspace":"x"}}`, `{`} {
		req := httptest.NewRequest(http.MethodPatch, "/api/signature", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if w := c.do(req); w.Code != http.StatusBadRequest {
			t.Errorf("PATCH %s = %d, want 400", body, w.Code)
		}
	}
	if c.card().BrandColor != "#A41E34" {
		t.Error("rejected patch changed the card")
	}
}

func TestUploadPhotoAndRebake(t *testing.T) {
	c := newClient(t, nil)
	w := c.upload("/api/signature/photo", testPNG(t, 160, 120))
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	first := decodeImageResponse(t, w)
	if first.Field != signature.FieldPhotoURL || !strings.HasPrefix(first.Value, "data:image/png;base64,") {
		t.Fatalf("unexpected response %.80v", first)
	}
	if c.card().PhotoURL != first.Value {
		t.Error("photo not stored on the card")
	}

	w = c.json(http.MethodPatch, "/api/signature", map[string]any{"brandColor": "#333333"})
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH = %d", w.Code)
	}
	var body struct {
		Photo imageResponse `json:"photo"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Photo.Value == "" || body.Photo.Value == first.Value {
		t.Error("colour change did not re-bake the photo")
	}
	if c.card().PhotoURL != body.Photo.Value {
		t.Error("re-baked photo not stored")
	}

	w = c.json(http.MethodGet, "/api/signature/photo.png", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("photo.png = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != image.Pt(285, 375) {
		t.Errorf("baked size = %v", got)
	}
}

func TestConcurrentColourPatchesMatchCard(t *testing.T) {
	c := newClient(t, nil)
	if w := c.upload("/api/signature/photo", testPNG(t, 160, 120)); w.Code != http.StatusOK {
		t.Fatalf("upload = %d", w.Code)
	}
	cookies := c.cookies

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		code := "#A41E34"
		if i%2 == 1 {
			code = "#C46713"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPatch, "/api/signature", strings.NewReader(`{"brandColor":"`+code+`"}`))
			req.Header.Set("Content-Type", "application/json")
			for _, ck := range cookies {
				req.AddCookie(ck)
			}
			w := httptest.NewRecorder()
			c.r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("PATCH %s = %d", code, w.Code)
			}
		}()
	}
	wg.Wait()

	card := c.card()
	w := c.json(http.MethodGet, "/api/signature/photo.png", nil)
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	// x=2 lies inside the left frame band at every scale.
	if got := signature.Hex(img.At(2, img.Bounds().Dy()/2)); got != card.BrandColor {
		t.Errorf("photo frame %s, card brand %s", got, card.BrandColor)
	}
}

func TestUploadInvalidImage(t *testing.T) {
	c := newClient(t, nil)
	before := c.card()
	for _, path := range []string{"/api/signature/photo", "/api/signature/logo"} {
		w := c.upload(path, []byte("plain text, not a picture"))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", path, w.Code)
		}
	}
	after := c.card()
	if after.PhotoURL != before.PhotoURL || after.LogoURL != before.LogoURL {
		t.Error("invalid upload changed an image field")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/signature/photo", strings.NewReader(""))
	if w := c.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d, want 400", w.Code)
	}
	if w := c.json(http.MethodGet, "/api/signature/photo.png", nil); w.Code != http.StatusNotFound {
		t.Errorf("photo.png without upload = %d, want 404", w.Code)
	}
}

func TestUploadAboveSourcePixelLimit(t *testing.T) {
	c := newClient(t, func(cfg *config.Config) { cfg.Limits.MaxSourcePixels = 100 })
	w := c.upload("/api/signature/photo", testPNG(t, 160, 120))
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "too many pixels") {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	if c.card().PhotoURL != "" {
		t.Error("rejected upload changed the photo")
	}
}

func TestUploadLogoIsVerbatim(t *testing.T) {
	c := newClient(t, nil)
	data := testPNG(t, 40, 20)
	w := c.upload("/api/signature/logo", data)
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeImageResponse(t, w)
	if resp.Field != signature.FieldLogoURL || c.card().LogoURL != resp.Value {
		t.Errorf("logo not published: %+v", resp.Field)
	}
}

func TestOversizedWarning(t *testing.T) {
	c := newClient(t, func(cfg *config.Config) { cfg.Limits.WarnDataURIBytes = 1000 })
	w := c.upload("/api/signature/photo", testPNG(t, 200, 200))
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeImageResponse(t, w); resp.Warning == "" {
		t.Error("expected a warning")
	}
	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events); err != nil {
		t.Fatal(err)
	}
	if _, ok := events["toast"]; !ok {
		t.Errorf("HX-Trigger has no toast: %s", w.Header().Get("HX-Trigger"))
	}
}

func TestRenderingDisabledPublishesOriginal(t *testing.T) {
	c := newClient(t, func(cfg *config.Config) { cfg.Rendering.Disabled = true })
	data := testPNG(t, 50, 50)
	w := c.upload("/api/signature/photo", data)
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeImageResponse(t, w)
	if !resp.Degraded {
		t.Error("expected degraded result")
	}
	if c.card().PhotoURL != resp.Value {
		t.Error("original image not published")
	}
}

func TestSetImageURL(t *testing.T) {
	c := newClient(t, nil)
	w := c.json(http.MethodPut, "/api/signature/photo-url", map[string]string{"url": "www.example.com/me.jpg"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT = %d: %s", w.Code, w.Body.String())
	}
	if got := c.card().PhotoURL; got != "https://www.example.com/me.jpg" {
		t.Errorf("PhotoURL = %q", got)
	}

	form := url.Values{"url": {"https://example.com/logo.svg"}}
	req := httptest.NewRequest(http.MethodPut, "/api/signature/logo-url", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if w := c.do(req); w.Code != http.StatusOK {
		t.Fatalf("form PUT = %d: %s", w.Code, w.Body.String())
	}
	if got := c.card().LogoURL; got != "https://example.com/logo.svg" {
		t.Errorf("LogoURL = %q", got)
	}

	if w := c.json(http.MethodPut, "/api/signature/photo-url", map[string]string{"url": "javascript:alert(1)"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad scheme = %d, want 400", w.Code)
	}
}

func TestPreviewAndExport(t *testing.T) {
	c := newClient(t, nil)
	c.json(http.MethodPatch, "/api/signature", map[string]any{"name": "Grace Hopper"})

	w := c.json(http.MethodGet, "/api/signature/preview", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Grace") {
		t.Fatalf("preview = %d: %.200s", w.Code, w.Body.String())
	}

	w = c.json(http.MethodGet, "/api/signature/export", nil)
	var out struct {
		HTML string `json:"html"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.HTML, "\n") || strings.Contains(out.HTML, "> <") {
		t.Error("exported HTML is not collapsed")
	}
	if !strings.HasPrefix(out.Text, "Grace Hopper") {
		t.Errorf("text = %q", out.Text)
	}

	w = c.json(http.MethodGet, "/api/signature/export?format=text", nil)
	if w.Body.String() != out.Text {
		t.Error("format=text differs from the JSON text")
	}
}

func TestQRCode(t *testing.T) {
	c := newClient(t, nil)
	w := c.json(http.MethodGet, "/api/signature/qr?fg=%23000000&download=1", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s: %s", w.Code, w.Header().Get("Content-Type"), w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "contact-qr.png") {
		t.Error("missing download header")
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Errorf("qr is not a PNG: %v", err)
	}

	if w := c.json(http.MethodGet, "/api/signature/qr?module=99", nil); w.Code != http.StatusBadRequest {
		t.Errorf("module=99 = %d, want 400", w.Code)
	}
	c.json(http.MethodPatch, "/api/signature", map[string]any{"name": ""})
	if w := c.json(http.MethodGet, "/api/signature/qr", nil); w.Code != http.StatusBadRequest {
		t.Errorf("nameless card = %d, want 400", w.Code)
	}
}

func TestParseColorParam(t *testing.T) {
	def := color.RGBA{1, 2, 3, 255}
	tests := map[string]color.RGBA{
		"":        def,
		"zzzzzz":  def,
		"#ff0000": {255, 0, 0, 255},
		"00ff00":  {0, 255, 0, 255},
	}
	for in, want := range tests {
		if got := parseColorParam(in, def); got != want {
			t.Errorf("parseColorParam(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPalette(t *testing.T) {
	c := newClient(t, nil)
	w := c.json(http.MethodGet, "/api/palette", nil)
	var got []signature.Swatch
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(signature.DefaultPalette()) || got[0].Code != "#FDCD1F" {
		t.Errorf("palette = %+v", got)
	}
}

func TestGenericToast(t *testing.T) {
	c := newClient(t, nil)
	form := url.Values{"title": {"Saved"}, "variant": {"warning"}, "dismissible": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/api/htmx/toast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := c.do(req)
	body := w.Body.String()
	if w.Code != http.StatusOK || !strings.Contains(body, "Saved") || !strings.Contains(body, `data-variant="warning"`) {
		t.Errorf("toast = %d: %s", w.Code, body)
	}

	w = c.json(http.MethodPost, "/api/htmx/toast", map[string]string{"title": "Copied", "variant": "success"})
	if !strings.Contains(w.Body.String(), "Copied") {
		t.Errorf("json toast: %s", w.Body.String())
	}
}

func TestHomePage(t *testing.T) {
	c := newClient(t, nil)
	w := c.json(http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("home = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(strings.ToLower(body), "<!doctype html>") {
		t.Errorf("home page does not start with a doctype: %.40s", body)
	}
	for _, want := range []string{`hx-get="/api/signature/preview"`, "#A41E34", "Anna Sumiyati", "285×375"} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if len(c.cookies) == 0 {
		t.Error("home page did not start a session")
	}
}
