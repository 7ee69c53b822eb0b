package fileio

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in data, assuming a CSV-like file.
func DetermineDelimiter(data []byte) rune {
	if delimiters := Delimiters(data); len(delimiters) > 0 {
		return delimiters[0]
	}

	return ','
}

// Delimiters returns every candidate delimiter the detector found, most
// likely first.
func Delimiters(data []byte) []rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')

	out := make([]rune, 0, len(delimiters))
	for _, v := range delimiters {
		if len(v) > 0 {
			out = append(out, rune(v[0]))
		}
	}

	return out
}

// DetermineDelimiterFrom is like DetermineDelimiter but only accepts one of
// the allowed runes, falling back to the first allowed rune. Free-text
// columns (dates, species names) otherwise tend to nominate '-' or ' '.
func DetermineDelimiterFrom(data []byte, allowed ...rune) rune {
	for _, d := range Delimiters(data) {
		for _, a := range allowed {
			if d == a {
				return d
			}
		}
	}

	if len(allowed) > 0 {
		return allowed[0]
	}

	return ','
}
