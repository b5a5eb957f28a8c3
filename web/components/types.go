package components

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

// EditorData is what the editor page needs to render its first state.
type EditorData struct {
	Card    signature.Card
	Palette []signature.Swatch
	// MaxUploadMB is shown next to the file pickers.
	MaxUploadMB int64
	// PhotoWidth and PhotoHeight are the pixel size of a baked portrait.
	PhotoWidth  int
	PhotoHeight int
}

const (
	inputBase  = "block w-full rounded-md border border-gray-300 px-3 py-2 text-sm focus:border-gray-500 focus:outline-none"
	buttonBase = "inline-flex items-center justify-center rounded-md px-3 py-2 text-sm font-medium"
)

// InputClass merges extra classes over the default text input style.
func InputClass(extra ...string) string {
	return twmerge.Merge(append([]string{inputBase}, extra...)...)
}

// ButtonClass merges extra classes over the default button style.
func ButtonClass(extra ...string) string {
	return twmerge.Merge(append([]string{buttonBase, "bg-gray-900 text-white hover:bg-gray-700"}, extra...)...)
}

// SwatchClass styles a palette button filled with code, outlining the active
// colour.
func SwatchClass(code string, active bool) string {
	c := "h-8 w-8 rounded-full border-2 border-transparent bg-[" + code + "]"
	if active {
		c = twmerge.Merge(c, "border-gray-900 ring-2 ring-offset-2")
	}
	return c
}
