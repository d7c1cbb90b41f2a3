package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	json "github.com/goccy/go-json"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "steps":
		err = stepsCmd(cfg, os.Args[2:], os.Stdout)
	case "schema":
		err = schemaCmd(cfg, os.Args[2:], os.Stdout)
	case "fill":
		err = fillCmd(ctx, cfg, os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "goform CLI\n\nUsage:\n  goform steps  [-survey file.yaml]\n  goform schema [-survey file.yaml]\n  goform fill   -answers answers.json [-survey file.yaml] [-select path] [-step n] [-watch]\n\nEnvironment:\n  GOFORM_SURVEY, GOFORM_LANG (en|ja), GOFORM_LOG_LEVEL (debug|info|warn|error)")
}

func stepsCmd(cfg Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("steps", flag.ContinueOnError)
	path := fs.String("survey", "", "survey definition (YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	def, err := cfg.definition(*path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%d steps)\n", def.Title, def.TotalSteps())
	for i, st := range def.Steps {
		fmt.Fprintf(w, "%d. %s: %s\n", i+1, st.Title, st.Description)
		fmt.Fprintf(w, "   checks: %s\n", strings.Join(def.FieldsForStep(i+1), ", "))
	}
	return nil
}

func schemaCmd(cfg Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	path := fs.String("survey", "", "survey definition (YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	def, err := cfg.definition(*path)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(def.JSONSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("schema: encode: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "goform: "+format+"\n", args...)
	os.Exit(1)
}
