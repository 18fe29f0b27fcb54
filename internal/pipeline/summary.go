package pipeline

import (
	"fmt"
	"io"
)

// WriteSummary prints a human-readable account of res: table sizes per
// granularity, then every skipped table and failed write.
func WriteSummary(w io.Writer, res *Result) error {
	p := &printer{w: w}
	p.printf("run %s: %s, %d entities\n", res.RunID, res.State, len(res.Entities))

	for _, out := range res.Outputs {
		p.printf("%s:\n", out.Granularity)
		for _, wt := range out.Wide {
			p.printf("  %-17s %d rows x %d periods, %d entities\n", wt.Kind, len(wt.Rows), len(wt.Periods), len(wt.Entities()))
		}
		if out.Tall != nil {
			p.printf("  %-17s %d rows\n", "statements", len(out.Tall.Rows))
		}
	}

	if len(res.Skipped) > 0 {
		p.printf("skipped %d table(s):\n", len(res.Skipped))
		for _, s := range res.Skipped {
			p.printf("  %s %s %s: %v\n", s.Granularity, s.Kind, s.Entity, s.Err)
		}
	}

	if len(res.PersistErrors) > 0 {
		p.printf("persistence failures:\n")
		for _, err := range res.PersistErrors {
			p.printf("  %v\n", err)
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
