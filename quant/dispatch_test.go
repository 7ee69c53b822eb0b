package quant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/willtownes/patel2014gliohuman/kmer"
	"github.com/willtownes/patel2014gliohuman/runinfo"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(species runinfo.Species, k kmer.Size) (string, error) {
	if species != runinfo.HomoSapiens {
		return "", fmt.Errorf("no index for %s", species)
	}
	if k.IsDefault() {
		return "hs.kidx", nil
	}
	return fmt.Sprintf("hs.k%d.kidx", int(k)), nil
}

type recordingSubmitter struct {
	jobs []Job
	fail map[string]bool
}

func (r *recordingSubmitter) Submit(ctx context.Context, job Job) error {
	r.jobs = append(r.jobs, job)
	if r.fail[job.SampleID] {
		return errors.New("bsub: queue unavailable")
	}
	return nil
}

func testSamples() runinfo.Samples {
	return runinfo.Samples{
		"GSM1": {ID: "GSM1", Runs: []string{"R1", "R2"}, Layout: runinfo.LayoutPaired, Species: runinfo.HomoSapiens, AvgLengths: []int{80, 100}},
		"GSM2": {ID: "GSM2", Runs: []string{"R3", "R4"}, Layout: runinfo.LayoutSingle, Species: runinfo.HomoSapiens, AvgLengths: []int{60, 80}},
		"GSM3": {ID: "GSM3", Runs: []string{"R5"}, Layout: runinfo.LayoutSingle, Species: runinfo.HomoSapiens, AvgLengths: []int{50}},
	}
}

func testDispatcher(t *testing.T, sub Submitter) *Dispatcher {
	dir := t.TempDir()
	return &Dispatcher{
		InputFolder:  "fastq",
		OutputFolder: filepath.Join(dir, "kallisto_out"),
		LogDir:       filepath.Join(dir, "bsub_out"),
		Resolver:     fakeResolver{},
		Submitter:    sub,
	}
}

func TestRunSubmitsEverySample(t *testing.T) {
	sub := &recordingSubmitter{}
	d := testDispatcher(t, sub)

	if err := d.Run(context.Background(), testSamples(), kmer.Map{runinfo.HomoSapiens: 19}); err != nil {
		t.Fatal(err)
	}

	if len(sub.jobs) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(sub.jobs))
	}

	for _, dir := range []string{d.LogDir, filepath.Join(d.OutputFolder, "GSM1"), filepath.Join(d.OutputFolder, "GSM2"), filepath.Join(d.OutputFolder, "GSM3")} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("Expected directory %s to exist (err: %v)", dir, err)
		}
	}

	paired := sub.jobs[0]
	expected := strings.Join([]string{
		"kallisto", "quant", "-i", "hs.k19.kidx", "-o", filepath.Join(d.OutputFolder, "GSM1"),
		filepath.Join("fastq", "R1_1.fastq.gz"), filepath.Join("fastq", "R1_2.fastq.gz"),
		filepath.Join("fastq", "R2_1.fastq.gz"), filepath.Join("fastq", "R2_2.fastq.gz"),
	}, " ")
	if got := strings.Join(paired.Args, " "); got != expected {
		t.Errorf("Paired command:\ngot      %s\nexpected %s", got, expected)
	}

	single := sub.jobs[1]
	expected = strings.Join([]string{
		"kallisto", "quant", "--single", "-i", "hs.k19.kidx", "-o", filepath.Join(d.OutputFolder, "GSM2"),
		"-l", "70", "-s", "14",
		filepath.Join("fastq", "R3_1.fastq.gz"), filepath.Join("fastq", "R4_1.fastq.gz"),
	}, " ")
	if got := strings.Join(single.Args, " "); got != expected {
		t.Errorf("Single command:\ngot      %s\nexpected %s", got, expected)
	}
	if single.LogDir != d.LogDir || single.OutDir != filepath.Join(d.OutputFolder, "GSM2") {
		t.Errorf("Unexpected job locations %+v", single)
	}
}

func TestRunIsIdempotentOnDirectories(t *testing.T) {
	d := testDispatcher(t, &recordingSubmitter{})
	for i := 0; i < 2; i++ {
		if err := d.Run(context.Background(), testSamples(), kmer.Map{runinfo.HomoSapiens: kmer.Default}); err != nil {
			t.Fatalf("Pass %d: %v", i, err)
		}
	}
}

func TestRunContinuesAfterSubmissionFailure(t *testing.T) {
	sub := &recordingSubmitter{fail: map[string]bool{"GSM1": true}}
	d := testDispatcher(t, sub)

	err := d.Run(context.Background(), testSamples(), kmer.Map{runinfo.HomoSapiens: kmer.Default})
	if err == nil {
		t.Fatal("Expected the GSM1 failure to be reported")
	}

	if len(sub.jobs) != 3 {
		t.Errorf("Expected all 3 samples to be attempted, got %d", len(sub.jobs))
	}

	var subErr *SubmissionError
	if !errors.As(err, &subErr) || subErr.SampleID != "GSM1" {
		t.Errorf("Expected a SubmissionError for GSM1, got %v", err)
	}
	if !errors.Is(err, ErrSubmission) {
		t.Error("Expected errors.Is to match ErrSubmission")
	}
}

func TestDispatchMissingKmer(t *testing.T) {
	sub := &recordingSubmitter{}
	d := testDispatcher(t, sub)

	err := d.Dispatch(context.Background(), testSamples()["GSM3"], kmer.Map{})
	var subErr *SubmissionError
	if !errors.As(err, &subErr) || subErr.SampleID != "GSM3" {
		t.Errorf("Expected a SubmissionError for GSM3, got %v", err)
	}
	if len(sub.jobs) != 0 {
		t.Errorf("Expected nothing to be submitted")
	}
}

func TestDispatchResolverFailure(t *testing.T) {
	sub := &recordingSubmitter{}
	d := testDispatcher(t, sub)

	mouse := &runinfo.Sample{ID: "GSM9", Runs: []string{"R9"}, Layout: runinfo.LayoutSingle, Species: runinfo.MusMusculus, AvgLengths: []int{50}}
	if err := d.Dispatch(context.Background(), mouse, kmer.Map{runinfo.MusMusculus: kmer.Default}); err == nil {
		t.Error("Expected the resolver failure to be returned")
	}
	if len(sub.jobs) != 0 {
		t.Errorf("Expected nothing to be submitted")
	}
}

func TestJobCustomFragmentSD(t *testing.T) {
	d := testDispatcher(t, &recordingSubmitter{})
	d.FragmentSD = FragmentSDRatio(10)
	d.Kallisto = "/opt/kallisto/kallisto"

	job, err := d.Job(testSamples()["GSM3"], kmer.Default)
	if err != nil {
		t.Fatal(err)
	}

	got := strings.Join(job.Args, " ")
	if !strings.HasPrefix(got, "/opt/kallisto/kallisto quant --single -i hs.kidx") || !strings.Contains(got, "-l 50 -s 5 ") {
		t.Errorf("Unexpected command %s", got)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	sub := &recordingSubmitter{}
	d := testDispatcher(t, sub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Run(ctx, testSamples(), kmer.Map{runinfo.HomoSapiens: kmer.Default}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(sub.jobs) != 0 {
		t.Errorf("Expected no submissions after cancellation, got %d", len(sub.jobs))
	}
}
