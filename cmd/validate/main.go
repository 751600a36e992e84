package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kdabb05/llmud/internal/storage"
	"github.com/kdabb05/llmud/pkg/lore"
)

func main() {
	dataDir := flag.String("data", "data", "world data directory")
	layoutFile := flag.String("layouts", "", "layout file (default: <data>/layouts.yaml)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [--data dir] [--layouts file] [map ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := &WorldValidator{world: storage.NewFileWorld(*dataDir, *layoutFile, logger)}

	report, err := validator.Validate(context.Background(), flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	report.Print(os.Stdout)
	if len(report.Errors) > 0 {
		os.Exit(1)
	}
	fmt.Println("World data is valid!")
}

// WorldValidator checks maps, layouts and lore under a data directory.
type WorldValidator struct {
	world *storage.FileWorld
}

// Report collects problems found. Errors make the data unusable; warnings
// only degrade the map diagram.
type Report struct {
	Checked  []string
	Errors   []string
	Warnings []string
}

func (r *Report) Print(w io.Writer) {
	for _, name := range r.Checked {
		fmt.Fprintf(w, "Validated %s\n", name)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
}

// Validate checks the named maps, or every map when names is empty, and
// every lore category.
func (v *WorldValidator) Validate(ctx context.Context, names []string) (*Report, error) {
	if len(names) == 0 {
		all, err := v.world.ListMaps(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("no maps found")
		}
		names = all
	}

	report := &Report{}
	for _, name := range names {
		v.validateMap(ctx, name, report)
	}
	for _, category := range lore.Categories {
		if _, err := v.world.GetLore(ctx, category); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("lore %s: %v", category, err))
			continue
		}
		report.Checked = append(report.Checked, "lore "+string(category))
	}
	return report, nil
}

func (v *WorldValidator) validateMap(ctx context.Context, name string, report *Report) {
	m, err := v.world.GetMap(ctx, name)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("map %s: %v", name, err))
		return
	}
	report.Checked = append(report.Checked, "map "+name)

	for _, err := range m.Validate() {
		report.Errors = append(report.Errors, fmt.Sprintf("map %s: %v", name, err))
	}

	layout, err := v.world.GetLayout(ctx, name)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("layout %s: %v", name, err))
		return
	}
	for _, room := range layout.Missing(m) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("layout %s: room %s has no position and is left off the diagram", name, room))
	}
}
