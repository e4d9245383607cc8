package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Result is the outcome of one option or kv entry.
type Result struct {
	// Tag is set for option results.
	Tag Tag
	// Key is set for kv results.
	Key string

	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Name returns the tag, or "kv:<key>" for kv results.
func (r Result) Name() string {
	if r.Key != "" {
		return "kv:" + r.Key
	}
	return string(r.Tag)
}

// OptionError wraps the failure of a single option.
type OptionError struct {
	Name string
	Err  error
}

func (e *OptionError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *OptionError) Unwrap() error { return e.Err }

// Report collects the results of applying a theme, in execution order.
type Report struct {
	Theme   string
	Results []Result
	// Ignored lists kv keys no key loader is registered for.
	Ignored []string
}

// Succeeded returns results without an error, including skipped ones.
func (r *Report) Succeeded() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns results with an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every failure into one error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, &OptionError{Name: res.Name(), Err: res.Err})
	}
	return errors.Join(errs...)
}

// Dispatcher runs the loaders of a theme.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher returns a Dispatcher backed by registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// LoadAll applies every option of t, last declared first, and then every kv
// entry in key order. The kv entries applied are the ones t held when
// LoadAll was called; values recovered by legacy conversion are applied by
// the converting loader itself.
func (d *Dispatcher) LoadAll(ctx context.Context, t *Theme) *Report {
	report := &Report{Theme: t.Name}
	options := slices.Clone(t.Options)
	kv := maps.Clone(t.KV)

	for i := len(options) - 1; i >= 0; i-- {
		tag := options[i]
		res := Result{Tag: tag}
		l, ok := d.registry.Get(tag)
		if !ok {
			res.Err = fmt.Errorf("no loader registered")
		} else {
			res = d.run(ctx, res, func() (Outcome, error) { return l.Apply(ctx, t) })
		}
		d.record(report, res)
	}

	for _, key := range slices.Sorted(maps.Keys(kv)) {
		k, ok := d.registry.Key(key)
		if !ok {
			d.logger.Warn("unrecognized kv key, ignoring", "theme", t.Name, "key", key)
			report.Ignored = append(report.Ignored, key)
			continue
		}
		value := kv[key]
		res := d.run(ctx, Result{Key: key}, func() (Outcome, error) { return k.ApplyKey(ctx, t, value) })
		d.record(report, res)
	}

	d.logger.Info("theme loaded", "theme", t.Name,
		"succeeded", len(report.Succeeded()), "failed", len(report.Failed()))
	return report
}

func (d *Dispatcher) run(ctx context.Context, res Result, apply func() (Outcome, error)) Result {
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	start := time.Now()
	res.Outcome, res.Err = apply()
	res.Duration = time.Since(start)
	return res
}

func (d *Dispatcher) record(report *Report, res Result) {
	report.Results = append(report.Results, res)
	switch {
	case res.Err != nil:
		d.logger.Warn("option failed", "theme", report.Theme, "option", res.Name(), "err", res.Err)
	default:
		d.logger.Debug("option "+res.Outcome.String(), "theme", report.Theme,
			"option", res.Name(), "took", res.Duration)
	}
}
