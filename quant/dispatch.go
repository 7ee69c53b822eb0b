package quant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"

	"github.com/willtownes/patel2014gliohuman/kmer"
	"github.com/willtownes/patel2014gliohuman/runinfo"
)

// IndexResolver names the transcriptome index for a species at a k-mer size.
type IndexResolver interface {
	Resolve(species runinfo.Species, k kmer.Size) (string, error)
}

// Dispatcher submits one kallisto quantification job per sample.
type Dispatcher struct {
	InputFolder  string
	OutputFolder string

	// LogDir receives the scheduler's per-job logs. Defaults to bsub_out.
	LogDir string

	// Extension of the FASTQ files. Defaults to fastq.gz.
	Extension string

	// Kallisto is the binary to invoke. Defaults to kallisto.
	Kallisto string

	Resolver  IndexResolver
	Submitter Submitter

	// FragmentSD estimates the fragment length SD for single-end samples.
	// Defaults to NaiveFragmentSD.
	FragmentSD FragmentSDPolicy

	// Verbose logs every submitted command.
	Verbose bool
}

func (d *Dispatcher) logDir() string {
	if d.LogDir == "" {
		return "bsub_out"
	}
	return d.LogDir
}

func (d *Dispatcher) kallisto() string {
	if d.Kallisto == "" {
		return "kallisto"
	}
	return d.Kallisto
}

// Prepare creates the log and output folders. Existing folders are fine.
func (d *Dispatcher) Prepare() error {
	if err := os.MkdirAll(d.logDir(), 0755); err != nil {
		return pfx.Err(err)
	}
	log.Printf("bsub logs stored in %s folder\n", d.logDir())

	if err := os.MkdirAll(d.OutputFolder, 0755); err != nil {
		return pfx.Err(err)
	}
	log.Printf("kallisto output in %s\n", d.OutputFolder)

	return nil
}

// Job builds, but does not submit, the quantification job for one sample.
// The sample's output folder is created as a side effect.
func (d *Dispatcher) Job(sample *runinfo.Sample, k kmer.Size) (Job, error) {
	index, err := d.Resolver.Resolve(sample.Species, k)
	if err != nil {
		return Job{}, err
	}

	outdir := filepath.Join(d.OutputFolder, sample.ID)
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return Job{}, pfx.Err(err)
	}

	files := ReadPaths(d.InputFolder, sample.Runs, sample.IsPairedEnd(), d.Extension)

	var args []string
	if sample.IsPairedEnd() {
		args = PairedArgs(index, outdir, files)
	} else {
		flen, err := MedianLength(sample.AvgLengths)
		if err != nil {
			return Job{}, pfx.Err(err)
		}

		sd := d.FragmentSD
		if sd == nil {
			sd = NaiveFragmentSD
		}

		args = SingleArgs(index, outdir, flen, sd(flen), files)
	}

	return Job{
		SampleID: sample.ID,
		OutDir:   outdir,
		LogDir:   d.logDir(),
		Args:     append([]string{d.kallisto()}, args...),
	}, nil
}

// Dispatch builds and submits the job for one sample. Any failure is returned
// as a *SubmissionError.
func (d *Dispatcher) Dispatch(ctx context.Context, sample *runinfo.Sample, kmers kmer.Map) error {
	k, exists := kmers[sample.Species]
	if !exists {
		return &SubmissionError{SampleID: sample.ID, Err: fmt.Errorf("no k-mer size computed for species %q", sample.Species)}
	}

	job, err := d.Job(sample, k)
	if err != nil {
		return &SubmissionError{SampleID: sample.ID, Err: err}
	}

	if d.Verbose {
		log.Println(job.Command())
	}

	if err := d.Submitter.Submit(ctx, job); err != nil {
		return &SubmissionError{SampleID: sample.ID, Err: err}
	}

	return nil
}

// Run submits every sample. A failed sample is logged and does not stop the
// remaining samples; all failures are returned together at the end. Samples
// are visited in sorted order. Cancelling ctx stops further submissions.
func (d *Dispatcher) Run(ctx context.Context, samples runinfo.Samples, kmers kmer.Map) error {
	log.Printf("Starting new quantification run for batch of %d samples from %s\n", len(samples), d.InputFolder)

	if err := d.Prepare(); err != nil {
		return err
	}

	var errs []error
	submitted := 0
	for _, id := range samples.IDs() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		log.Printf("===processing fastq files from sample ID: %s===\n", id)
		if err := d.Dispatch(ctx, samples[id], kmers); err != nil {
			log.Println(err)
			errs = append(errs, err)
			continue
		}
		submitted++
	}

	log.Printf("Submitted %d of %d samples\n", submitted, len(samples))

	return errors.Join(errs...)
}
