// Package kmer picks a kallisto index k-mer length per species so that the
// shortest reads in a batch can still pseudoalign.
//
// For each sample the effective length is the shortest average fragment
// length among its runs, halved for paired-end libraries. The species value is
// the minimum across its samples, halved again and rounded down to an odd
// number. Values of 31 or more fall back to kallisto's default.
//
// See https://groups.google.com/g/kallisto-sleuth-users/c/Uv9badM-cTE
package kmer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/willtownes/patel2014gliohuman/runinfo"
)

// DefaultSize is the k-mer length kallisto and salmon use when none is given.
const DefaultSize = 31

// MinUsableSize is the smallest k-mer length that is accepted.
const MinUsableSize = 3

// Size is a k-mer length. The zero value, Default, means no explicit override
// is needed.
type Size int

const Default Size = 0

func (k Size) IsDefault() bool {
	return k == Default
}

// Value returns the concrete k-mer length, resolving Default to 31.
func (k Size) Value() int {
	if k.IsDefault() {
		return DefaultSize
	}

	return int(k)
}

func (k Size) String() string {
	if k.IsDefault() {
		return "default"
	}

	return fmt.Sprintf("%d", int(k))
}

// Map holds one k-mer size per species.
type Map map[runinfo.Species]Size

// Species returns the species in m, sorted.
func (m Map) Species() []runinfo.Species {
	out := make([]runinfo.Species, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sortSpecies(out)

	return out
}

func sortSpecies(species []runinfo.Species) {
	sort.Slice(species, func(i, j int) bool { return species[i] < species[j] })
}

var ErrDegenerateSize = errors.New("degenerate k-mer size")

// DegenerateSizeError reports reads too short to yield a usable k-mer length.
type DegenerateSizeError struct {
	Species         runinfo.Species
	EffectiveLength int
	K               int
}

func (e *DegenerateSizeError) Error() string {
	return fmt.Sprintf("species %q: shortest effective read length %d gives k-mer size %d, below the minimum of %d", e.Species, e.EffectiveLength, e.K, MinUsableSize)
}

func (e *DegenerateSizeError) Unwrap() error { return ErrDegenerateSize }

// EffectiveLength is the shortest average length among a sample's runs, halved
// for paired-end libraries where each mate covers half the fragment.
func EffectiveLength(s *runinfo.Sample) int {
	if len(s.AvgLengths) == 0 {
		return 0
	}

	minLen := s.AvgLengths[0]
	for _, v := range s.AvgLengths[1:] {
		if v < minLen {
			minLen = v
		}
	}

	if s.IsPairedEnd() {
		minLen /= 2
	}

	return minLen
}

// bound is a running minimum. The zero value is unbounded: no sample has
// constrained it yet.
type bound struct {
	seen bool
	min  int
}

func (b bound) fold(v int) bound {
	if !b.seen || v < b.min {
		return bound{seen: true, min: v}
	}

	return b
}

// MinEffectiveLengths returns, per species, the smallest effective length of
// any of its samples.
func MinEffectiveLengths(samples runinfo.Samples) map[runinfo.Species]int {
	bounds := make(map[runinfo.Species]bound)
	for _, s := range samples {
		bounds[s.Species] = bounds[s.Species].fold(EffectiveLength(s))
	}

	out := make(map[runinfo.Species]int, len(bounds))
	for species, b := range bounds {
		out[species] = b.min
	}

	return out
}

// FromEffectiveLength halves n, forces the result odd by decrementing even
// values, and maps anything at or above 31 to Default.
func FromEffectiveLength(n int) (Size, error) {
	k := n / 2
	if k%2 == 0 {
		k--
	}

	if k >= DefaultSize {
		return Default, nil
	}

	if k < MinUsableSize {
		return Default, &DegenerateSizeError{EffectiveLength: n, K: k}
	}

	return Size(k), nil
}

// Sizes computes the k-mer size for every species present in samples. If any
// species is degenerate, all such species are reported together and the
// returned map is nil.
func Sizes(samples runinfo.Samples) (Map, error) {
	minLengths := MinEffectiveLengths(samples)

	// Sorted so that joined errors come out in a stable order
	species := make([]runinfo.Species, 0, len(minLengths))
	for s := range minLengths {
		species = append(species, s)
	}
	sortSpecies(species)

	out := make(Map, len(species))
	var errs []error
	for _, s := range species {
		k, err := FromEffectiveLength(minLengths[s])
		if err != nil {
			var degenerate *DegenerateSizeError
			if errors.As(err, &degenerate) {
				degenerate.Species = s
			}
			errs = append(errs, err)
			continue
		}
		out[s] = k
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return out, nil
}
