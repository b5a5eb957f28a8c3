package rebake

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cristianadrielbraun/sigbake/internal/compositor"
	"github.com/cristianadrielbraun/sigbake/internal/imageio"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

var (
	yellow = color.RGBA{0xFD, 0xCD, 0x1F, 0xFF}
	bordo  = color.RGBA{0xA4, 0x1E, 0x34, 0xFF}
)

func photoBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 0x40, 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// countingBaker wraps a compositor and can hold bakes of a given source width.
type countingBaker struct {
	inner *compositor.Compositor
	calls atomic.Int32
	holdW int
	hold  chan struct{}
}

func (b *countingBaker) Bake(src image.Image, frame color.Color) (*compositor.Baked, error) {
	b.calls.Add(1)
	if b.hold != nil && src.Bounds().Dx() == b.holdW {
		<-b.hold
	}
	return b.inner.Bake(src, frame)
}

func newBaker(t *testing.T, opts ...compositor.Option) *countingBaker {
	t.Helper()
	c, err := compositor.New(compositor.DefaultSpec(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return &countingBaker{inner: c}
}

func TestUploadBakesPortrait(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	ctrl := New(newBaker(t), form, yellow)

	res, err := ctrl.Upload(context.Background(), Portrait, photoBytes(t, 120, 80))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.Degraded || res.Superseded {
		t.Errorf("unexpected result flags: %+v", res)
	}
	photo := form.Snapshot().PhotoURL
	if photo != res.Value {
		t.Error("result was not published")
	}
	mime, data, err := imageio.ParseDataURI(photo)
	if err != nil {
		t.Fatal(err)
	}
	if mime != imageio.MIMEPNG {
		t.Errorf("mime = %q", mime)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != compositor.DefaultSpec().Size() {
		t.Errorf("baked size %v", got)
	}
	if !ctrl.HasUpload() {
		t.Error("portrait upload was not remembered")
	}
}

func TestColorChangeRebakes(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	baker := newBaker(t)
	ctrl := New(baker, form, yellow)
	ctx := context.Background()

	first, err := ctrl.Upload(ctx, Portrait, photoBytes(t, 300, 400))
	if err != nil {
		t.Fatal(err)
	}
	changed, err := ctrl.ColorChange(ctx, bordo)
	if err != nil {
		t.Fatal(err)
	}
	if changed == nil || changed.Value == first.Value {
		t.Fatal("colour change did not produce a new bake")
	}
	if form.Snapshot().PhotoURL != changed.Value {
		t.Error("re-bake was not published")
	}

	back, err := ctrl.ColorChange(ctx, yellow)
	if err != nil {
		t.Fatal(err)
	}
	if back.Value != first.Value {
		t.Error("returning to the first colour did not reproduce the first bake")
	}
	if ctrl.Color() != yellow {
		t.Errorf("Color() = %v", ctrl.Color())
	}
}

func TestRepeatedColorIsMemoized(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	baker := newBaker(t)
	ctrl := New(baker, form, yellow)
	ctx := context.Background()

	if _, err := ctrl.Upload(ctx, Portrait, photoBytes(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	a, err := ctrl.ColorChange(ctx, bordo)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ctrl.ColorChange(ctx, bordo)
	if err != nil {
		t.Fatal(err)
	}
	if a.Value != b.Value {
		t.Error("same colour produced different output")
	}
	if got := baker.calls.Load(); got != 2 {
		t.Errorf("baker called %d times, want 2", got)
	}
}

func TestColorChangeWithoutUploadIsNoop(t *testing.T) {
	form := signature.NewForm(signature.Card{PhotoURL: "https://example.com/me.jpg"})
	baker := newBaker(t)
	ctrl := New(baker, form, yellow)

	res, err := ctrl.ColorChange(context.Background(), bordo)
	if err != nil || res != nil {
		t.Fatalf("ColorChange = %v, %v; want nil, nil", res, err)
	}
	if form.Snapshot().PhotoURL != "https://example.com/me.jpg" {
		t.Error("linked photo was replaced")
	}
	if baker.calls.Load() != 0 {
		t.Error("baker should not be called")
	}
	if ctrl.Color() != bordo {
		t.Error("colour should still be recorded for the next upload")
	}
}

func TestSetURLForgetsUpload(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	ctrl := New(newBaker(t), form, yellow)
	ctx := context.Background()

	if _, err := ctrl.Upload(ctx, Portrait, photoBytes(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.SetURL(Portrait, "www.example.com/me.jpg"); err != nil {
		t.Fatal(err)
	}
	if ctrl.HasUpload() {
		t.Error("upload should be dropped after a link is set")
	}
	if res, err := ctrl.ColorChange(ctx, bordo); err != nil || res != nil {
		t.Fatalf("ColorChange = %v, %v", res, err)
	}
	if got := form.Snapshot().PhotoURL; got != "https://www.example.com/me.jpg" {
		t.Errorf("PhotoURL = %q", got)
	}
	if _, err := ctrl.SetURL(Portrait, "ftp://example.com/me.jpg"); err == nil {
		t.Error("expected non-http link to fail")
	}
}

func TestInvalidUploadLeavesFieldUnchanged(t *testing.T) {
	form := signature.NewForm(signature.Card{PhotoURL: "keep", LogoURL: "keep"})
	ctrl := New(newBaker(t), form, yellow)

	for _, role := range []Role{Portrait, Logo} {
		_, err := ctrl.Upload(context.Background(), role, []byte("definitely not an image"))
		if !errors.Is(err, imageio.ErrInvalidImage) {
			t.Errorf("%v: err = %v, want ErrInvalidImage", role, err)
		}
	}
	card := form.Snapshot()
	if card.PhotoURL != "keep" || card.LogoURL != "keep" {
		t.Errorf("fields changed: %+v", card)
	}
	if ctrl.HasUpload() {
		t.Error("invalid upload was remembered")
	}
}

func TestUploadAboveSourcePixelLimit(t *testing.T) {
	form := signature.NewForm(signature.Card{PhotoURL: "keep"})
	baker := newBaker(t)
	ctrl := New(baker, form, yellow, WithMaxSourcePixels(64*64-1))

	_, err := ctrl.Upload(context.Background(), Portrait, photoBytes(t, 64, 64))
	if !errors.Is(err, imageio.ErrTooManyPixels) {
		t.Fatalf("err = %v, want ErrTooManyPixels", err)
	}
	if form.Snapshot().PhotoURL != "keep" || ctrl.HasUpload() || baker.calls.Load() != 0 {
		t.Error("oversized source was decoded or published")
	}
}

func TestLogoIsPassedThrough(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	baker := newBaker(t)
	ctrl := New(baker, form, yellow)
	data := photoBytes(t, 30, 10)

	res, err := ctrl.Upload(context.Background(), Logo, data)
	if err != nil {
		t.Fatal(err)
	}
	if want := imageio.DataURI("image/png", data); res.Value != want || form.Snapshot().LogoURL != want {
		t.Error("logo was not published verbatim")
	}
	if baker.calls.Load() != 0 || ctrl.HasUpload() {
		t.Error("logo must not be baked or remembered")
	}
	if _, err := ctrl.ColorChange(context.Background(), bordo); err != nil {
		t.Fatal(err)
	}
	if form.Snapshot().LogoURL != res.Value {
		t.Error("colour change touched the logo")
	}
}

func TestRenderingUnavailableFallsBack(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	ctrl := New(newBaker(t, compositor.WithSurface(compositor.Unavailable)), form, yellow)

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	res, err := ctrl.Upload(context.Background(), Portrait, buf.Bytes())
	if err != nil {
		t.Fatalf("degraded upload should not fail: %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded result")
	}
	if want := imageio.DataURI("image/jpeg", buf.Bytes()); form.Snapshot().PhotoURL != want {
		t.Error("original bytes were not published")
	}
}

func TestOversizedIsAdvisory(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	ctrl := New(newBaker(t), form, yellow, WithWarnBytes(100))

	res, err := ctrl.Upload(context.Background(), Portrait, photoBytes(t, 64, 64))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Oversized {
		t.Error("expected Oversized flag")
	}
	if form.Snapshot().PhotoURL != res.Value {
		t.Error("oversized result must still be published")
	}
}

func TestSlowBakeIsSuperseded(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	baker := newBaker(t)
	baker.holdW, baker.hold = 200, make(chan struct{})
	ctrl := New(baker, form, yellow)
	ctx := context.Background()

	slowData := photoBytes(t, 200, 100)
	done := make(chan *Result)
	go func() {
		res, err := ctrl.Upload(ctx, Portrait, slowData)
		if err != nil {
			t.Error(err)
		}
		done <- res
	}()

	// Wait until the slow bake has taken its ticket.
	for baker.calls.Load() == 0 {
		runtime.Gosched()
	}
	fast, err := ctrl.Upload(ctx, Portrait, photoBytes(t, 100, 100))
	if err != nil {
		t.Fatal(err)
	}
	close(baker.hold)
	slow := <-done

	if slow == nil || !slow.Superseded {
		t.Fatalf("slow bake result = %+v, want superseded", slow)
	}
	if form.Snapshot().PhotoURL != fast.Value {
		t.Error("older bake overwrote the newer one")
	}
}

func TestConcurrentColorChangesSettleOnLast(t *testing.T) {
	form := signature.NewForm(signature.Card{})
	ctrl := New(newBaker(t), form, yellow)
	ctx := context.Background()

	if _, err := ctrl.Upload(ctx, Portrait, photoBytes(t, 90, 120)); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := yellow
			if i%2 == 0 {
				c = bordo
			}
			if _, err := ctrl.ColorChange(ctx, c); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	final, err := ctrl.ColorChange(ctx, bordo)
	if err != nil {
		t.Fatal(err)
	}
	if form.Snapshot().PhotoURL != final.Value {
		t.Error("form does not hold the last bake")
	}
	if !strings.HasPrefix(final.Value, "data:image/png;base64,") {
		t.Errorf("unexpected value prefix: %.40s", final.Value)
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"photo": Portrait, "portrait": Portrait, "logo": Logo} {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRole("banner"); err == nil {
		t.Error("expected unknown role to fail")
	}
	if Logo.Field() != signature.FieldLogoURL || Portrait.Field() != signature.FieldPhotoURL {
		t.Error("role fields are mixed up")
	}
}
