package transform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/pagerewrite/internal/dom"
)

// Observer receives one observation per executed step. result is one of
// "changed", "unchanged" or "error".
type Observer interface {
	ObserveTransform(name, result string, d time.Duration)
}

// StepReport is the outcome of one step in a chain run.
type StepReport struct {
	Name string `json:"name"`
	Result
}

// Report is the outcome of a chain run, in execution order.
type Report struct {
	Steps []StepReport `json:"steps"`
}

// Changed counts the steps that modified the document.
func (r Report) Changed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Changed {
			n++
		}
	}
	return n
}

// Chain runs transforms one after another on the calling goroutine.
type Chain struct {
	steps    []Transform
	log      *slog.Logger
	observer Observer
}

// WithLogger sets the logger used for per-step debug output.
func (c *Chain) WithLogger(log *slog.Logger) *Chain {
	c.log = log
	return c
}

// WithObserver sets the metrics observer.
func (c *Chain) WithObserver(o Observer) *Chain {
	c.observer = o
	return c
}

// Names returns the step names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.steps))
	for i, t := range c.steps {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of steps.
func (c *Chain) Len() int { return len(c.steps) }

// Apply runs every step against doc. It stops at the first failing step;
// the returned report covers the steps that ran, including the failed one.
func (c *Chain) Apply(doc *dom.Document) (Report, error) {
	var report Report
	for _, t := range c.steps {
		start := time.Now()
		res, err := t.Apply(doc)
		elapsed := time.Since(start)

		report.Steps = append(report.Steps, StepReport{Name: t.Name(), Result: res})
		if err != nil {
			c.observe(t.Name(), "error", elapsed)
			return report, fmt.Errorf("transform %s: %w", t.Name(), err)
		}

		outcome := "unchanged"
		if res.Changed {
			outcome = "changed"
		}
		c.observe(t.Name(), outcome, elapsed)
		if c.log != nil {
			c.log.Debug("transform applied", "transform", t.Name(), "changed", res.Changed, "reason", res.Reason)
		}
	}
	return report, nil
}

func (c *Chain) observe(name, result string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveTransform(name, result, d)
	}
}
