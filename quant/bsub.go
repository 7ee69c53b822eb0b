package quant

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/kballard/go-shellquote"
)

// DefaultBsubPrefix submits each sample as its own LSF job, named after the
// sample, with stdout and stderr in the log directory.
const DefaultBsubPrefix = "bsub -J {sample} -o {logdir}/{sample}.out -e {logdir}/{sample}.err"

// BsubSubmitter runs a scheduler command line with the job's kallisto command
// appended as a single final argument. {sample} and {logdir} in Prefix are
// replaced, shell-quoted, before the prefix is split into arguments.
type BsubSubmitter struct {
	Prefix string

	// Exec runs the submission command. If nil, the command is run with
	// os/exec and its combined output is returned.
	Exec func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Argv returns the full scheduler command line for job.
func (b BsubSubmitter) Argv(job Job) ([]string, error) {
	prefix := b.Prefix
	if prefix == "" {
		prefix = DefaultBsubPrefix
	}

	r := strings.NewReplacer(
		"{sample}", shellquote.Join(job.SampleID),
		"{logdir}", shellquote.Join(job.LogDir),
	)

	argv, err := shellquote.Split(r.Replace(prefix))
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("could not parse submission prefix %q: %w", prefix, err))
	}
	if len(argv) == 0 {
		return nil, pfx.Err(fmt.Errorf("submission prefix is empty"))
	}

	return append(argv, job.Command()), nil
}

func (b BsubSubmitter) Submit(ctx context.Context, job Job) error {
	argv, err := b.Argv(job)
	if err != nil {
		return err
	}

	run := b.Exec
	if run == nil {
		run = combinedOutput
	}

	if out, err := run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("Output: %s | Error: %w", strings.TrimSpace(string(out)), err)
	}

	return nil
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
