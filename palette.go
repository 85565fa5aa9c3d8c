package sitebrief

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// PaletteSeed seeds the palette clustering. The seed is part of the public
// contract: given the same input multiset, ExtractPalette must produce
// byte-identical output across runs and across ports.
const PaletteSeed int64 = 42

// MaxPaletteColors caps the palette size.
const MaxPaletteColors = 6

// Channel bounds for brand colors. Values outside are treated as
// near-black/near-white noise and filtered before clustering; centroids are
// clamped back into the range.
const (
	minBrandChannel = 0x0F
	maxBrandChannel = 0xF0
)

// kmeansIterations bounds the clustering loop.
const kmeansIterations = 20

// minPaletteSqDist is the minimum squared RGB distance between any two
// palette entries. Colors closer than this collapse into the earlier, more
// dominant entry.
const minPaletteSqDist = 256

// ColorPalette is an ordered list of up to six hex colors, most dominant
// first.
type ColorPalette []string

// FallbackPalette returns the neutral palette used when no valid brand
// colors survive filtering. It is returned instead of an empty palette so
// consumers always have something to render with.
func FallbackPalette() ColorPalette {
	return ColorPalette{"#333333", "#666666", "#999999"}
}

type rgb struct {
	r, g, b int
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// ExtractPalette clusters color tokens (hex or functional RGB notation,
// arbitrary mixed formats) into a small dominant palette. Unparseable
// tokens are dropped silently; near-white and near-black values are
// filtered as non-brand noise. If nothing survives, the documented fallback
// palette is returned. Every returned color has each channel inside the
// brand range, and entries are pairwise separated by a minimum distance.
func ExtractPalette(tokens []string) ColorPalette {
	var colors []rgb
	for _, tok := range tokens {
		c, ok := parseColor(tok)
		if !ok {
			continue
		}
		if c.r > maxBrandChannel && c.g > maxBrandChannel && c.b > maxBrandChannel {
			continue
		}
		if c.r < minBrandChannel && c.g < minBrandChannel && c.b < minBrandChannel {
			continue
		}
		colors = append(colors, c)
	}

	if len(colors) == 0 {
		return FallbackPalette()
	}

	// Distinct colors in first-seen order, with multiplicity retained in
	// colors for weighting.
	seen := make(map[rgb]bool)
	var distinct []rgb
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			distinct = append(distinct, c)
		}
	}

	var candidates []rgb
	if len(distinct) <= MaxPaletteColors {
		candidates = distinct
	} else {
		candidates = kmeans(colors, distinct, MaxPaletteColors)
	}

	// Both paths share the output invariants: every channel clamped into
	// the brand range, and entries pairwise separated by a minimum
	// distance.
	for i := range candidates {
		candidates[i] = clampChannel(candidates[i])
	}
	candidates = separate(candidates)

	palette := make(ColorPalette, 0, len(candidates))
	for _, c := range candidates {
		palette = append(palette, c.hex())
	}
	return palette
}

// separate drops colors closer than the minimum palette distance to an
// earlier entry, keeping first-seen order.
func separate(colors []rgb) []rgb {
	var out []rgb
	for _, c := range colors {
		keep := true
		for _, k := range out {
			if sqDist(c, k) < minPaletteSqDist {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

// kmeans runs fixed-seed partitional clustering over the RGB points and
// returns the cluster centroids ordered by cluster size, largest first.
func kmeans(points, distinct []rgb, k int) []rgb {
	rng := rand.New(rand.NewSource(PaletteSeed))

	// Initial centroids: k distinct colors chosen by the seeded RNG.
	centroids := make([]rgb, k)
	for i, idx := range rng.Perm(len(distinct))[:k] {
		centroids[i] = distinct[idx]
	}

	assignments := make([]int, len(points))
	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := math.MaxFloat64
			for j, c := range centroids {
				if d := sqDist(p, c); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		sums := make([][3]int, k)
		counts := make([]int, k)
		for i, p := range points {
			a := assignments[i]
			sums[a][0] += p.r
			sums[a][1] += p.g
			sums[a][2] += p.b
			counts[a]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				continue
			}
			centroids[j] = rgb{
				r: roundDiv(sums[j][0], counts[j]),
				g: roundDiv(sums[j][1], counts[j]),
				b: roundDiv(sums[j][2], counts[j]),
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	// Order centroids by cluster size, stable on the original centroid
	// index so equal-size clusters keep a deterministic order.
	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if counts[order[j]] > counts[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var out []rgb
	for _, idx := range order {
		if counts[idx] == 0 {
			continue
		}
		out = append(out, centroids[idx])
	}
	return out
}

func sqDist(a, b rgb) float64 {
	dr := float64(a.r - b.r)
	dg := float64(a.g - b.g)
	db := float64(a.b - b.b)
	return dr*dr + dg*dg + db*db
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

func clampChannel(c rgb) rgb {
	clamp := func(v int) int {
		if v < minBrandChannel {
			return minBrandChannel
		}
		if v > maxBrandChannel {
			return maxBrandChannel
		}
		return v
	}
	return rgb{r: clamp(c.r), g: clamp(c.g), b: clamp(c.b)}
}

var colorTokenRe = regexp.MustCompile(`(?i)#[0-9a-f]{6}\b|#[0-9a-f]{3}\b|rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(?:,\s*[\d.]+\s*)?\)`)

// HarvestColorTokens scans raw markup (style blocks, inline styles, meta
// theme-color values) for color tokens in hex or functional RGB notation.
// The returned tokens preserve document order and multiplicity, which the
// clustering step uses as a dominance signal.
func HarvestColorTokens(rawHTML string) []string {
	return colorTokenRe.FindAllString(rawHTML, -1)
}

var rgbFuncRe = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)

// parseColor normalizes a color token to an RGB triple. Supported formats:
// #rgb, #rrggbb, rgb(r,g,b), rgba(r,g,b,a).
func parseColor(token string) (rgb, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return rgb{}, false
	}

	if strings.HasPrefix(token, "#") {
		hex := token[1:]
		switch len(hex) {
		case 3:
			var out rgb
			for i, dst := range []*int{&out.r, &out.g, &out.b} {
				v, err := strconv.ParseInt(strings.Repeat(string(hex[i]), 2), 16, 32)
				if err != nil {
					return rgb{}, false
				}
				*dst = int(v)
			}
			return out, true
		case 6:
			var out rgb
			for i, dst := range []*int{&out.r, &out.g, &out.b} {
				v, err := strconv.ParseInt(hex[i*2:i*2+2], 16, 32)
				if err != nil {
					return rgb{}, false
				}
				*dst = int(v)
			}
			return out, true
		default:
			return rgb{}, false
		}
	}

	if m := rgbFuncRe.FindStringSubmatch(token); m != nil {
		var out rgb
		for i, dst := range []*int{&out.r, &out.g, &out.b} {
			v, err := strconv.Atoi(m[i+1])
			if err != nil || v > 255 {
				return rgb{}, false
			}
			*dst = int(v)
		}
		return out, true
	}

	return rgb{}, false
}
