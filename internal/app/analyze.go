package app

import (
	"context"

	"github.com/dshills/quire/internal/analysis"
)

// FrequencyOptions returns the configured word frequency options.
func (d *Document) FrequencyOptions() analysis.FrequencyOptions {
	a := d.cfg.Analysis
	return analysis.FrequencyOptions{
		Language:           a.Language,
		OveruseThreshold:   a.OveruseThreshold,
		RepetitionDistance: a.RepetitionDistance,
		FilterStopWords:    a.FilterStopWords,
		MinWordLength:      a.MinWordLength,
	}
}

// Analyze submits the statistics, word frequency and tag detection tasks
// over a snapshot of the current content. It returns the number of tasks submitted. Results
// arrive through Poll or Wait.
func (d *Document) Analyze() (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	snap := d.buf.Snapshot()
	tasks := []analysis.Task{
		analysis.Statistics{},
		analysis.NewWordFrequency(d.FrequencyOptions()),
		analysis.TagDetector{},
	}
	for _, task := range tasks {
		id, err := d.runner.Submit(task, snap)
		if err != nil {
			return 0, opError("analyze", task.Name(), err)
		}
		d.log.Debug("submitted %s as %s at revision %d", task.Name(), id, snap.Revision())
	}
	return len(tasks), nil
}

// Poll applies every analysis result that has arrived, without blocking,
// and returns how many were applied.
func (d *Document) Poll() int {
	n := 0
	for {
		select {
		case res, ok := <-d.runner.Results():
			if !ok {
				return n
			}
			d.apply(res)
			n++
		default:
			return n
		}
	}
}

// Wait blocks until one analysis result arrives, applies it and returns
// it.
func (d *Document) Wait(ctx context.Context) (analysis.Result, error) {
	select {
	case res, ok := <-d.runner.Results():
		if !ok {
			return analysis.Result{}, ErrClosed
		}
		d.apply(res)
		return res, nil
	case <-ctx.Done():
		return analysis.Result{}, ctx.Err()
	}
}

func (d *Document) apply(res analysis.Result) {
	if res.Err != nil {
		d.log.Warn("analysis %s failed: %v", res.Task, res.Err)
		return
	}
	d.reports[res.Task] = res
	d.log.Debug("analysis %s done in %s at revision %d", res.Task, res.Duration(), res.Revision)
}

// Report returns the latest successful result of the named task and
// whether it reflects the current content.
func (d *Document) Report(task string) (res analysis.Result, current bool, ok bool) {
	res, ok = d.reports[task]
	return res, ok && res.Revision == d.buf.Revision(), ok
}
