package runinfo

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one line of an SRA run info table. Only the columns needed to
// assemble samples are bound; the rest of the table is ignored.
type Row struct {
	Run            string `csv:"Run"`
	SampleName     string `csv:"SampleName"`
	LibraryLayout  string `csv:"LibraryLayout"`
	ScientificName string `csv:"ScientificName"`
	AvgLength      string `csv:"avgLength"`
}

// RequiredColumns lists the headers that must be present in a run info table.
var RequiredColumns = []string{"SampleName", "Run", "LibraryLayout", "ScientificName", "avgLength"}

type Layout byte

const (
	LayoutSingle Layout = iota + 1
	LayoutPaired
)

func (l Layout) String() string {
	switch l {
	case LayoutSingle:
		return "SINGLE"
	case LayoutPaired:
		return "PAIRED"
	}

	return fmt.Sprintf("Layout(%d)", byte(l))
}

// ParseLayout accepts SINGLE or PAIRED in any case.
func ParseLayout(value string) (Layout, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SINGLE":
		return LayoutSingle, true
	case "PAIRED":
		return LayoutPaired, true
	}

	return 0, false
}

type Species string

const (
	HomoSapiens Species = "Homo sapiens"
	MusMusculus Species = "Mus musculus"
)

// KnownSpecies are the organisms for which a transcriptome is available.
var KnownSpecies = []Species{HomoSapiens, MusMusculus}

func IsKnownSpecies(s Species) bool {
	for _, k := range KnownSpecies {
		if k == s {
			return true
		}
	}

	return false
}

// Sample collects every run belonging to one biological sample. Layout and
// Species are fixed by the first run seen; AvgLengths is parallel to Runs.
type Sample struct {
	ID         string
	Runs       []string
	Layout     Layout
	Species    Species
	AvgLengths []int
}

func (s *Sample) IsPairedEnd() bool {
	return s.Layout == LayoutPaired
}

// Samples is keyed by sample name.
type Samples map[string]*Sample

// IDs returns the sample names in sorted order.
func (s Samples) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}
