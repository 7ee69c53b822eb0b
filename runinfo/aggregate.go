package runinfo

import (
	"fmt"
	"strconv"
	"strings"
)

// Aggregate folds run info rows into samples, in input order. Any malformed
// row or any disagreement between runs of one sample aborts aggregation.
func Aggregate(rows []Row) (Samples, error) {
	out := make(Samples)

	for i, row := range rows {
		s := strings.TrimSpace(row.SampleName)
		r := strings.TrimSpace(row.Run)

		// Row numbers are 1-based and account for the header line
		if s == "" {
			return nil, fmt.Errorf("row %d: SampleName: %w", i+2, ErrMissingField)
		}
		if r == "" {
			return nil, fmt.Errorf("row %d: Run: %w", i+2, ErrMissingField)
		}
		if !safeFolderName(s) {
			return nil, fmt.Errorf("row %d: SampleName %q: %w", i+2, s, ErrUnsafeSampleName)
		}

		layout, ok := ParseLayout(row.LibraryLayout)
		if !ok {
			return nil, &InvalidLayoutError{Run: r, Value: row.LibraryLayout}
		}

		species := Species(strings.TrimSpace(row.ScientificName))
		if !IsKnownSpecies(species) {
			return nil, &InvalidSpeciesError{Run: r, Species: string(species), Known: KnownSpecies}
		}

		avgLength, err := strconv.Atoi(strings.TrimSpace(row.AvgLength))
		if err != nil || avgLength < 0 {
			return nil, &InvalidLengthError{Run: r, Value: row.AvgLength}
		}

		sample, exists := out[s]
		if !exists {
			out[s] = &Sample{
				ID:         s,
				Runs:       []string{r},
				Layout:     layout,
				Species:    species,
				AvgLengths: []int{avgLength},
			}
			continue
		}

		// Multiple runs for this sample
		sample.Runs = append(sample.Runs, r)
		sample.AvgLengths = append(sample.AvgLengths, avgLength)

		if sample.Layout != layout {
			return nil, &InconsistentSampleError{Sample: s, Run: r, Field: "LibraryLayout"}
		}
		if sample.Species != species {
			return nil, &InconsistentSampleError{Sample: s, Run: r, Field: "ScientificName"}
		}
	}

	return out, nil
}

// Each sample gets its own output folder named after it, so the name must
// stay inside the output folder.
func safeFolderName(s string) bool {
	return s != "." && !strings.Contains(s, "..") && !strings.ContainsAny(s, "/\\")
}
