package quant

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TSVSubmitter does not run anything. It writes one tab-delimited task line
// per job, with a dsub-style header, so that the batch can be reviewed or
// handed to another scheduler.
type TSVSubmitter struct {
	W io.Writer

	wroteHeader bool
}

func (t *TSVSubmitter) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !t.wroteHeader {
		if _, err := fmt.Fprintf(t.W, "--env sample\t--output outdir\t--env command\n"); err != nil {
			return err
		}
		t.wroteHeader = true
	}

	_, err := fmt.Fprintf(t.W, "%s\t%s\t%s\n", tsvField(job.SampleID), tsvField(job.OutDir), tsvField(job.Command()))
	return err
}

// Tabs and newlines would break the row structure.
func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
