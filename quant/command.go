package quant

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/montanaflynn/stats"
)

// DefaultExtension is the suffix of the FASTQ files fetched from SRA.
const DefaultExtension = "fastq.gz"

// FragmentSDPolicy estimates the fragment length standard deviation passed to
// kallisto --single from the median fragment length.
type FragmentSDPolicy func(medianLength float64) float64

// NaiveFragmentSD is a placeholder, not a fitted estimate: one fifth of the
// median.
func NaiveFragmentSD(medianLength float64) float64 {
	return medianLength / 5.0
}

// FragmentSDRatio returns a policy that divides the median by ratio.
func FragmentSDRatio(ratio float64) FragmentSDPolicy {
	return func(medianLength float64) float64 {
		return medianLength / ratio
	}
}

// ReadPaths lists the FASTQ files for each run in order. For paired-end runs
// the forward and reverse files of a run are adjacent.
func ReadPaths(inputFolder string, runs []string, paired bool, ext string) []string {
	if ext == "" {
		ext = DefaultExtension
	}

	out := make([]string, 0, 2*len(runs))
	for _, r := range runs {
		out = append(out, filepath.Join(inputFolder, fmt.Sprintf("%s_1.%s", r, ext)))
		if paired {
			out = append(out, filepath.Join(inputFolder, fmt.Sprintf("%s_2.%s", r, ext)))
		}
	}

	return out
}

// PairedArgs builds the kallisto argument list for paired-end reads. files
// must already be interleaved forward/reverse, run by run.
func PairedArgs(index, outdir string, files []string) []string {
	args := []string{"quant", "-i", index, "-o", outdir}
	return append(args, files...)
}

// SingleArgs builds the kallisto argument list for single-end reads, which
// need an estimated fragment length and standard deviation.
func SingleArgs(index, outdir string, fragmentLength, fragmentSD float64, files []string) []string {
	args := []string{
		"quant", "--single",
		"-i", index,
		"-o", outdir,
		"-l", formatFloat(fragmentLength),
		"-s", formatFloat(fragmentSD),
	}
	return append(args, files...)
}

// MedianLength is the median of a sample's per-run average lengths. Even
// counts average the two middle values.
func MedianLength(avgLengths []int) (float64, error) {
	return stats.Median(stats.LoadRawData(avgLengths))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
