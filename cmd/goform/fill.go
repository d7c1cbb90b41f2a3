package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/reoring/goform/survey"
)

// report is the JSON document printed by fill.
type report struct {
	Valid  bool              `json:"valid"`
	Step   int               `json:"step"`
	Total  int               `json:"total"`
	Errors map[string]string `json:"errors,omitempty"`
	Values map[string]any    `json:"values,omitempty"`
}

type fillOptions struct {
	selector string
	// step > 0 walks the wizard up to that step instead of submitting.
	step int
}

func fillCmd(ctx context.Context, cfg Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	path := fs.String("survey", "", "survey definition (YAML)")
	answers := fs.String("answers", "", "answers document (JSON)")
	sel := fs.String("select", "", "gjson path of the answers object inside the document")
	step := fs.Int("step", 0, "advance up to this step instead of submitting")
	watch := fs.Bool("watch", false, "re-run whenever the answers file changes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *answers == "" {
		fs.Usage()
		return errors.New("fill: -answers is required")
	}
	log, err := cfg.apply()
	if err != nil {
		return err
	}
	def, err := cfg.definition(*path)
	if err != nil {
		return err
	}
	opts := fillOptions{selector: *sel, step: *step}

	run := func() error {
		doc, err := os.ReadFile(*answers)
		if err != nil {
			return fmt.Errorf("fill: read answers: %w", err)
		}
		rep, err := fill(ctx, def, doc, opts, log)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("fill: encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	if err := run(); err != nil || !*watch {
		return err
	}
	return watchFile(ctx, *answers, log, run)
}

// fill loads the answers in doc into a fresh wizard and either submits or
// walks it to opts.step.
func fill(ctx context.Context, def *survey.Definition, doc []byte, opts fillOptions, log *slog.Logger) (report, error) {
	if !gjson.ValidBytes(doc) {
		return report{}, errors.New("fill: answers are not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if opts.selector != "" {
		root = root.Get(opts.selector)
		if !root.Exists() {
			return report{}, fmt.Errorf("fill: %q selects nothing", opts.selector)
		}
	}

	wz, err := survey.NewWizard(ctx, def, survey.WizardOptions{Logger: log})
	if err != nil {
		return report{}, err
	}
	f := wz.Form()
	for i := range def.Steps {
		for _, p := range fieldPaths(def, i) {
			if v := root.Get(p); v.Exists() {
				f.SetValue(ctx, p, v.Value())
			}
		}
	}

	rep := report{Total: wz.TotalSteps()}
	if opts.step > 0 {
		target := min(opts.step, wz.TotalSteps())
		for wz.CurrentStep() < target {
			if !wz.NextStep(ctx) {
				break
			}
		}
		rep.Step = wz.CurrentStep()
		rep.Errors = wz.StepErrors()
		rep.Valid = rep.Step == target
		return rep, nil
	}

	ok, err := wz.Submit(ctx)
	if err != nil {
		return report{}, err
	}
	rep.Valid = ok
	rep.Step = wz.CurrentStep()
	rep.Errors = f.Errors()
	rep.Values = wz.Submitted()
	return rep, nil
}

// fieldPaths lists every field of step i, checked or not.
func fieldPaths(def *survey.Definition, i int) []string {
	st := def.Steps[i]
	out := make([]string, len(st.Fields))
	for j, fd := range st.Fields {
		out[j] = st.Section + "." + fd.Name
	}
	return out
}

// watchFile calls run after every write to path until ctx is done. The
// parent directory is watched so editors that replace the file are seen.
func watchFile(ctx context.Context, path string, log *slog.Logger, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fill: watch: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("fill: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("fill: watch: %w", err)
	}
	log.Info("watching answers", slog.String("path", abs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if err := run(); err != nil {
				log.Warn("fill failed", slog.String("err", err.Error()))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", slog.String("err", err.Error()))
		}
	}
}
