//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
)

// Timing accumulates a sequence of labeled Samples measured back to
// back from a common start, the verbose-mode breakdown of where a
// Garbler or Evaluator session spent its time (garbling, OT, gate
// evaluation, ...).
type Timing struct {
	Start   time.Time
	Samples []*Sample
}

// NewTiming starts a new timing session at the current time.
func NewTiming() *Timing {
	return &Timing{Start: time.Now()}
}

// Sample closes out the interval since the previous sample (or Start,
// for the first one) and labels it.
func (t *Timing) Sample(label string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	s := &Sample{Label: label, Start: start, End: time.Now()}
	t.Samples = append(t.Samples, s)
	return s
}

// Print renders the accumulated samples as a table of label, duration,
// and percentage of the session's total wall time.
func (t *Timing) Print(w io.Writer) {
	if len(t.Samples) == 0 {
		return
	}

	tab := tabulate.New(tabulate.Github)
	tab.Header("Op")
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, s := range t.Samples {
		row := tab.Row()
		row.Column(s.Label)
		d := s.End.Sub(s.Start)
		row.Column(d.String())
		row.Column(fmt.Sprintf("%.2f%%", float64(d)/float64(total)*100))
	}

	row := tab.Row()
	row.Column("Total")
	row.Column(total.String())
	row.Column("100.00%")

	tab.Print(w)
}

// Sample is one labeled interval within a Timing session.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
}
