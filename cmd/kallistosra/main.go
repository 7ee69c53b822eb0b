// kallistosra submits one kallisto quantification job per sample listed in an
// SRA run info table. Runs are grouped by SampleName; a sample may have many
// runs, whose FASTQ files are expected in the input folder as <run>_1.fastq.gz
// (and <run>_2.fastq.gz when the library is PAIRED). The k-mer size of each
// species' index is chosen from the shortest reads of that species.
//
// Typical use:
//
//	kallistosra -input data/original/fastq -output data/original/kallisto_out -runinfo extdata/SraRunInfo_SRP006834.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/willtownes/patel2014gliohuman/compileinfo"
	"github.com/willtownes/patel2014gliohuman/kmer"
	"github.com/willtownes/patel2014gliohuman/quant"
	"github.com/willtownes/patel2014gliohuman/runinfo"
	"github.com/willtownes/patel2014gliohuman/transcriptome"
)

func main() {
	compileinfo.Fprint(os.Stderr)

	var (
		inputFolder, outputFolder, runinfoPath string
		transcriptomeFolder, logDir            string
		bsubPrefix, kallistoBin, ext           string
		sdRatio                                float64
		dryRun, skipIndexCheck, verbose        bool
	)
	flag.StringVar(&inputFolder, "input", "", "Location of the folder containing fastq.gz files")
	flag.StringVar(&outputFolder, "output", "", "Location of the folder for storing kallisto output. One subfolder is created per sample.")
	flag.StringVar(&runinfoPath, "runinfo", "", "Location of the csv file (local or gs://, optionally compressed) containing SRA run information. "+
		"It must have at least the columns 'SampleName', 'Run', 'LibraryLayout', 'ScientificName' and 'avgLength'. "+
		fmt.Sprintf("ScientificName must be one of %v.", runinfo.KnownSpecies))
	flag.StringVar(&transcriptomeFolder, "transcriptome-folder", "../resources", "Folder (local or gs://) where kallisto transcriptome indices are stored.")
	flag.StringVar(&logDir, "log-dir", "bsub_out", "Folder for scheduler logs.")
	flag.StringVar(&bsubPrefix, "bsub", quant.DefaultBsubPrefix, "Submission command. {sample} and {logdir} are substituted; the kallisto command is appended as the final argument.")
	flag.StringVar(&kallistoBin, "kallisto", "kallisto", "Path to the kallisto binary, as seen by the compute nodes.")
	flag.StringVar(&ext, "ext", quant.DefaultExtension, "Extension of the FASTQ files.")
	flag.Float64Var(&sdRatio, "sd-ratio", 5.0, "For single-end samples, the fragment length SD is estimated as the median fragment length divided by this value.")
	flag.BoolVar(&dryRun, "dry-run", false, "Print a tab-delimited task file to stdout instead of submitting jobs.")
	flag.BoolVar(&skipIndexCheck, "skip-index-check", false, "Do not verify that the transcriptome indices exist before submitting.")
	flag.BoolVar(&verbose, "verbose", false, "Print each kallisto command as it is submitted.")
	flag.Parse()

	if inputFolder == "" || outputFolder == "" || runinfoPath == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -input, -output and -runinfo")
	}

	if sdRatio <= 0 {
		flag.PrintDefaults()
		log.Fatalln("-sd-ratio must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var client *storage.Client
	if strings.HasPrefix(runinfoPath, "gs://") || strings.HasPrefix(transcriptomeFolder, "gs://") {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	if err := run(ctx, client, config{
		InputFolder:         inputFolder,
		OutputFolder:        outputFolder,
		RunInfo:             runinfoPath,
		TranscriptomeFolder: transcriptomeFolder,
		LogDir:              logDir,
		BsubPrefix:          bsubPrefix,
		Kallisto:            kallistoBin,
		Extension:           ext,
		SDRatio:             sdRatio,
		DryRun:              dryRun,
		SkipIndexCheck:      skipIndexCheck,
		Verbose:             verbose,
	}); err != nil {
		log.Fatalln(err)
	}
}

type config struct {
	InputFolder         string
	OutputFolder        string
	RunInfo             string
	TranscriptomeFolder string
	LogDir              string
	BsubPrefix          string
	Kallisto            string
	Extension           string
	SDRatio             float64
	DryRun              bool
	SkipIndexCheck      bool
	Verbose             bool
}

func run(ctx context.Context, client *storage.Client, cfg config) error {
	samples, err := runinfo.ReadFile(ctx, cfg.RunInfo, client)
	if err != nil {
		return err
	}

	kmers, err := kmer.Sizes(samples)
	if err != nil {
		return err
	}
	for _, species := range kmers.Species() {
		log.Printf("Using k-mer size %s for %s\n", kmers[species], species)
	}

	folder := transcriptome.Folder{Path: cfg.TranscriptomeFolder, Client: client}
	if !cfg.SkipIndexCheck {
		if err := folder.Check(ctx, kmers); err != nil {
			return err
		}
	}

	var submitter quant.Submitter = quant.BsubSubmitter{Prefix: cfg.BsubPrefix}
	if cfg.DryRun {
		submitter = &quant.TSVSubmitter{W: os.Stdout}
	}

	d := &quant.Dispatcher{
		InputFolder:  cfg.InputFolder,
		OutputFolder: cfg.OutputFolder,
		LogDir:       cfg.LogDir,
		Extension:    cfg.Extension,
		Kallisto:     cfg.Kallisto,
		Resolver:     folder,
		Submitter:    submitter,
		FragmentSD:   quant.FragmentSDRatio(cfg.SDRatio),
		Verbose:      cfg.Verbose,
	}

	return d.Run(ctx, samples, kmers)
}
