// internal/models/card.go
package models

import "github.com/google/uuid"

// Color is one of the four playable card colors, or ColorNone for wild
// cards and for the table state while a wild's color choice is pending.
type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorNone   Color = "none"
)

// Colors lists the four playable colors in deck-building order.
var Colors = []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}

// Playable reports whether the color is one a wild choice may resolve
// to. ColorNone and unknown strings are not.
func (c Color) Playable() bool {
	switch c {
	case ColorRed, ColorGreen, ColorBlue, ColorYellow:
		return true
	}
	return false
}

// Value is a card's face: a numeral "0" through "9" or an action value.
type Value string

const (
	ValueSkip         Value = "skip"
	ValueReverse      Value = "reverse"
	ValueDrawTwo      Value = "draw_two"
	ValueWild         Value = "wild"
	ValueWildDrawFour Value = "wild_draw_four"
)

// Numerals lists the number faces in order; index matches face value.
var Numerals = []Value{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// IsWild reports whether the value requires a follow-up color choice.
func (v Value) IsWild() bool {
	return v == ValueWild || v == ValueWildDrawFour
}

// IsAction reports whether the value carries a turn effect, wilds
// included.
func (v Value) IsAction() bool {
	switch v {
	case ValueSkip, ValueReverse, ValueDrawTwo, ValueWild, ValueWildDrawFour:
		return true
	}
	return false
}

// Card is a single card. ID is unique across one room's deck so a play
// names exactly one card even when faces repeat.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Color Color     `json:"color"`
	Value Value     `json:"value"`
}
