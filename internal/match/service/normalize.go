package service

import (
	"regexp"
	"strings"
)

// Carrier/vessel prefixes, whole words only. Slashed forms go first so
// "M/V" is not half-eaten by the "MV" alternative.
var rePrefix = regexp.MustCompile(`\b(?:M/V|S/V|MV|MT|HSC|MS|MTS)\b`)

// Voyage markers: VOY, VOYAGE, VOY#, VOYAGE#, V.
// "VOYAGER" stays intact (no word boundary after VOY/VOYAGE there).
var (
	reVoyage = regexp.MustCompile(`\b(?:VOYAGE|VOY)(?:#|\b)`)
	reVDot   = regexp.MustCompile(`\bV\.`)
)

// Everything outside A-Z, 0-9 and space becomes a space, then collapses.
var reNonAlnum = regexp.MustCompile(`[^A-Z0-9 ]`)

// NormalizeVessel — canonical comparison form of a raw vessel name.
// Voyage numbers are kept on purpose: "OCEAN STAR 12" and "OCEAN STAR 7"
// are different sailings. An earlier variant stripped digits; superseded.
func NormalizeVessel(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	out := strings.ToUpper(s)
	out = rePrefix.ReplaceAllString(out, " ")
	out = reVoyage.ReplaceAllString(out, " ")
	out = reVDot.ReplaceAllString(out, " ")
	out = reNonAlnum.ReplaceAllString(out, " ")
	// Second strip pass: removing punctuation can expose a prefix token that
	// was glued to it ("_MS_" -> "MS"). Keeps the transform idempotent.
	out = rePrefix.ReplaceAllString(out, " ")
	out = reVoyage.ReplaceAllString(out, " ")
	return collapseSpaces(out)
}

// compactVessel — canonical form with spaces removed. Derived on demand for
// the exact-match bonus in the scorer, never stored.
func compactVessel(canonical string) string {
	return strings.ReplaceAll(canonical, " ", "")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
