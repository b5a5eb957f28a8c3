// Package toast renders the small notifications swapped in by HTMX.
package toast

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// ParseVariant maps a form value to a Variant, defaulting to success.
func ParseVariant(s string) Variant {
	switch s {
	case "error", "destructive":
		return VariantError
	case "warning":
		return VariantWarning
	case "info":
		return VariantInfo
	}
	return VariantSuccess
}

type Position string

const (
	PositionTopRight    Position = "top-right"
	PositionBottomRight Position = "bottom-right"
	PositionBottomLeft  Position = "bottom-left"
)

type Props struct {
	Title       string
	Description string
	Variant     Variant
	Position    Position
	// Duration in milliseconds before the toast hides itself. Zero keeps it open.
	Duration    int
	Dismissible bool
	Icon        bool
	Class       string
}

var variantClasses = map[Variant]string{
	VariantSuccess: "border-green-600 bg-green-50 text-green-900",
	VariantInfo:    "border-blue-600 bg-blue-50 text-blue-900",
	VariantWarning: "border-amber-500 bg-amber-50 text-amber-900",
	VariantError:   "border-red-600 bg-red-50 text-red-900",
}

var positionClasses = map[Position]string{
	PositionTopRight:    "top-4 right-4",
	PositionBottomRight: "bottom-4 right-4",
	PositionBottomLeft:  "bottom-4 left-4",
}

var icons = map[Variant]string{
	VariantSuccess: "✓",
	VariantInfo:    "i",
	VariantWarning: "!",
	VariantError:   "×",
}

func (p Props) variant() Variant {
	if _, ok := variantClasses[p.Variant]; ok {
		return p.Variant
	}
	return VariantSuccess
}

// Classes returns the merged class list of the toast container.
func Classes(p Props) string {
	pos := p.Position
	if _, ok := positionClasses[pos]; !ok {
		pos = PositionBottomRight
	}
	return twmerge.Merge(
		"fixed z-50 flex w-80 items-start gap-3 rounded-md border-l-4 p-4 shadow-lg",
		variantClasses[p.variant()],
		positionClasses[pos],
		p.Class,
	)
}
