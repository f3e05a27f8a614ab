package service

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/rs/zerolog/log"
)

// Bonus weights on top of the best base metric. Empirically tuned, keep as is.
const (
	bonusFirstTokens  = 18 // same first up-to-2 alphabetic tokens ("WAN HAI ...")
	bonusCompactEqual = 22 // identical after removing all spaces
)

var lev = metrics.NewLevenshtein()

// Score — composite similarity between two raw vessel names in [0, 100].
// Base is the max of five edit-distance metrics over the spaced and compact
// canonical forms; bonuses are additive and the total is capped at 100.
// Any internal failure scores 0: a bad string must never abort a matching pass.
func Score(a, b string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("a", a).Str("b", b).Msg("vessel score failed")
			score = 0
		}
	}()

	sa := NormalizeVessel(a)
	sb := NormalizeVessel(b)
	if sa == "" || sb == "" {
		return 0
	}
	ca := compactVessel(sa)
	cb := compactVessel(sb)

	best := tokenSortRatio(sa, sb)
	if v := tokenSetRatio(sa, sb); v > best {
		best = v
	}
	if v := partialRatio(sa, sb); v > best {
		best = v
	}
	if v := partialRatio(ca, cb); v > best {
		best = v
	}
	if v := ratio(ca, cb); v > best {
		best = v
	}

	if t := firstAlphaTokens(sa); t != "" && t == firstAlphaTokens(sb) {
		best += bonusFirstTokens
	}
	if ca == cb {
		best += bonusCompactEqual
	}
	if best > 100 {
		best = 100
	}
	return best
}

// ratio — normalized Levenshtein similarity scaled to 0..100.
func ratio(a, b string) float64 {
	return strutil.Similarity(a, b, lev) * 100
}

// tokenSortRatio — order-independent comparison: sort tokens, then ratio.
func tokenSortRatio(a, b string) float64 {
	return ratio(sortTokens(a), sortTokens(b))
}

// tokenSetRatio — set-overlap-aware variant: compare the shared-token core
// against each side's core+remainder, take the best pairing.
func tokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := ratio(t0, t1)
	if v := ratio(t0, t2); v > best {
		best = v
	}
	if v := ratio(t1, t2); v > best {
		best = v
	}
	return best
}

// partialRatio — substring-aware: slide the shorter string over the longer
// and take the best window ratio.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}
	best := 0.0
	s := string(short)
	for i := 0; i+len(short) <= len(long); i++ {
		if v := ratio(s, string(long[i:i+len(short)])); v > best {
			best = v
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func tokenSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		m[t] = struct{}{}
	}
	return m
}

// firstAlphaTokens — the first up-to-2 purely alphabetic tokens, joined.
// Catches shared carrier names ("WAN HAI") even when a voyage number leads.
func firstAlphaTokens(s string) string {
	var out []string
	for _, t := range strings.Fields(s) {
		if !isAlpha(t) {
			continue
		}
		out = append(out, t)
		if len(out) == 2 {
			break
		}
	}
	return strings.Join(out, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return s != ""
}
