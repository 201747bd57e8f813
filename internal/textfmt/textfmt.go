// Package textfmt holds the numeric and text helpers used to render console
// lines. Every helper is total: absent or non-finite input renders as the
// documented default instead of "NaN".
package textfmt

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Finite reports whether v is usable as a number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DurationMs renders a millisecond duration:
//
//	< 1s   "{n} ms"
//	< 1m   "{n.n} s"
//	>= 1m  "{m}m {s}s"
//
// It returns "" when the duration is absent, non-finite or negative.
func DurationMs(ms float64, ok bool) string {
	if !ok || !Finite(ms) || ms < 0 {
		return ""
	}
	if ms < 1000 {
		return Fixed(ms, 0) + " ms"
	}
	if ms < 60000 {
		return Fixed(ms/1000, 1) + " s"
	}
	minutes := int64(math.Floor(ms / 60000))
	seconds := int64(math.Round(math.Mod(ms, 60000) / 1000))
	if seconds == 60 {
		minutes++
		seconds = 0
	}
	return strconv.FormatInt(minutes, 10) + "m " + strconv.FormatInt(seconds, 10) + "s"
}

// Score renders a detector score with two decimals; "0.00" when absent.
func Score(v float64, ok bool) string {
	if !ok || !Finite(v) {
		return "0.00"
	}
	return Fixed(v, 2)
}

// Percent renders a percentage value (0-100 scale) with one decimal and a
// "%" suffix; "0.0%" when absent.
func Percent(v float64, ok bool) string {
	if !ok || !Finite(v) {
		return "0.0%"
	}
	return Fixed(v, 1) + "%"
}

// Ratio returns num/den as a percentage. ok is false when den is zero.
func Ratio(num, den float64) (float64, bool) {
	if den == 0 || !Finite(num) || !Finite(den) {
		return 0, false
	}
	return num / den * 100, true
}

// Fixed rounds v half away from zero to the given number of decimals and
// renders it in fixed notation. Rounding works on the shortest decimal
// representation of v, so 1.005 rounds to "1.01".
func Fixed(v float64, places int) string {
	if !Finite(v) {
		v = 0
	}
	if places < 0 {
		places = 0
	}
	neg := v < 0
	digits := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(digits, ".")

	if len(frac) <= places {
		frac += strings.Repeat("0", places-len(frac))
	} else {
		roundUp := frac[places] >= '5'
		frac = frac[:places]
		if roundUp {
			intPart, frac = increment(intPart, frac)
		}
	}

	out := intPart
	if places > 0 {
		out += "." + frac
	}
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}

// increment adds one unit in the last place of intPart.frac.
func increment(intPart, frac string) (string, string) {
	all := []byte(intPart + frac)
	i := len(all) - 1
	for ; i >= 0; i-- {
		if all[i] == '9' {
			all[i] = '0'
			continue
		}
		all[i]++
		break
	}
	if i < 0 {
		all = append([]byte{'1'}, all...)
	}
	split := len(all) - len(frac)
	return string(all[:split]), string(all[split:])
}

// JoinLimited joins at most limit items with ", " and appends
// "... (+K more)" when items were dropped.
func JoinLimited(items []string, limit int) string {
	if limit <= 0 || len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:limit], ", ") + "... (+" + strconv.Itoa(len(items)-limit) + " more)"
}

// Basename returns the last "/"-delimited segment of a path.
func Basename(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ShortName returns the last "."-delimited segment of a dotted identifier,
// e.g. "ade.detectors.email.header_match" -> "header_match".
func ShortName(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Plural renders "1 row" / "1,204 rows".
func Plural(n int64, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return Count(n) + " " + noun + "s"
}

// Bytes renders a byte size ("4.2 MB").
func Bytes(n int64) string {
	if n < 0 {
		return ""
	}
	return humanize.Bytes(uint64(n))
}
