package service

import (
	"unicode/utf8"

	"droitis-backend/config"
)

// SizeClass is the pipeline path selected for a given case text length.
type SizeClass int

const (
	// SizeDirect proceeds straight to generation.
	SizeDirect SizeClass = iota
	// SizeCondense routes through the condensation stage first.
	SizeCondense
	// SizeBlocked short-circuits to a clarification asking the user to
	// narrow the excerpt; condensing this much text would blow the latency
	// budget.
	SizeBlocked
	// SizeTooLarge rejects the request outright, before any model call.
	SizeTooLarge
)

// ClassifySize buckets a case text into exactly one pipeline path. Length is
// counted in runes so accented text is not penalized. Pure classification
// over the configured thresholds; blocking takes precedence over
// condensation.
func ClassifySize(text string, t config.SizingThresholds) SizeClass {
	n := utf8.RuneCountInString(text)
	switch {
	case n > t.HardMax:
		return SizeTooLarge
	case n >= t.HardBlock:
		return SizeBlocked
	case n >= t.SoftCondense:
		return SizeCondense
	default:
		return SizeDirect
	}
}
