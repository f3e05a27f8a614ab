package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVessel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"uppercase", "maersk koda", "MAERSK KODA"},
		{"mv prefix", "MV OCEAN STAR", "OCEAN STAR"},
		{"slashed prefix", "M/V Ocean Star", "OCEAN STAR"},
		{"sv prefix", "S/V WINDWARD", "WINDWARD"},
		{"voyage word", "OCEAN STAR VOYAGE 7", "OCEAN STAR 7"},
		{"voyage hash", "OCEAN STAR VOY# 7", "OCEAN STAR 7"},
		{"v dot", "WAN HAI 503 V.0123", "WAN HAI 503 0123"},
		{"prefix and voyage", "MV OCEAN STAR VOY 12", "OCEAN STAR 12"},
		{"digits kept", "EVER GIVEN 021E", "EVER GIVEN 021E"},
		{"punctuation", "Maersk-Koda (IMO 9778791)", "MAERSK KODA IMO 9778791"},
		{"whitespace runs", "  OCEAN \t STAR  ", "OCEAN STAR"},
		{"voyager untouched", "VOYAGER II", "VOYAGER II"},
		{"embedded not whole word", "MSC AMSTERDAM", "MSC AMSTERDAM"},
		{"prefix only", "MV", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeVessel(tc.in))
		})
	}
}

func TestNormalizeVesselIdempotent(t *testing.T) {
	inputs := []string{
		"", "MV OCEAN STAR VOY 12", "M/V Wan Hai 503 V.0123",
		"_MS_ ODYSSEY", "x.MV. FOO", "Maersk-Koda (IMO 9778791)",
		"voy# 99", "HSC FRANCISCO", "plain name",
	}
	for _, in := range inputs {
		once := NormalizeVessel(in)
		assert.Equal(t, once, NormalizeVessel(once), "input %q", in)
	}
}

func TestCompactVessel(t *testing.T) {
	assert.Equal(t, "OCEANSTAR12", compactVessel(NormalizeVessel("MV OCEAN STAR VOY 12")))
	assert.Equal(t, "", compactVessel(""))
}
