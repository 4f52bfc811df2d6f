// Package config loads worksheet layout overrides from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/tkoide3/scanfmt-go/pkg/scanfmt"
)

type columnRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// fileLayout mirrors scanfmt.Layout with columns written as letters, so a
// layout file reads the way the worksheet does. Absent fields keep their
// defaults.
type fileLayout struct {
	Hide       *columnRange `yaml:"hide"`
	Filter     *columnRange `yaml:"filter"`
	Sort       string       `yaml:"sort"`
	Severity   string       `yaml:"severity"`
	Duplicates []string     `yaml:"duplicates"`
	Keep       []string     `yaml:"keep"`
	RowHeight  *float64     `yaml:"row_height"`
	AutoFit    []string     `yaml:"autofit"`
}

// Load reads a layout file and applies it on top of scanfmt.DefaultLayout.
// An empty path or a file that does not exist returns the defaults
// unchanged.
func Load(path string) (scanfmt.Layout, error) {
	layout := scanfmt.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return layout, nil
		}
		return layout, err
	}

	var fl fileLayout
	if err := yaml.UnmarshalStrict(data, &fl); err != nil {
		return layout, fmt.Errorf("parsing layout file %s: %w", path, err)
	}

	if fl.Hide != nil {
		if layout.HideStart, layout.HideEnd, err = columnSpan(*fl.Hide); err != nil {
			return layout, fmt.Errorf("hide: %w", err)
		}
	}
	if fl.Filter != nil {
		if layout.FilterStart, layout.FilterEnd, err = columnSpan(*fl.Filter); err != nil {
			return layout, fmt.Errorf("filter: %w", err)
		}
	}
	if fl.Sort != "" {
		if layout.SortColumn, err = column(fl.Sort); err != nil {
			return layout, fmt.Errorf("sort: %w", err)
		}
	}
	if fl.Severity != "" {
		if layout.SeverityColumn, err = column(fl.Severity); err != nil {
			return layout, fmt.Errorf("severity: %w", err)
		}
	}
	if len(fl.Duplicates) > 0 {
		if layout.DuplicateColumns, err = columns(fl.Duplicates); err != nil {
			return layout, fmt.Errorf("duplicates: %w", err)
		}
	}
	if len(fl.Keep) > 0 {
		layout.KeepSeverities = fl.Keep
	}
	if fl.RowHeight != nil {
		layout.RowHeight = *fl.RowHeight
	}
	if len(fl.AutoFit) > 0 {
		if layout.AutoFitColumns, err = columns(fl.AutoFit); err != nil {
			return layout, fmt.Errorf("autofit: %w", err)
		}
	}
	return layout, nil
}

// column converts a column letter ("A", "AB") into a 0-based index.
func column(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

func columns(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		c, err := column(name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func columnSpan(r columnRange) (int, int, error) {
	start, err := column(r.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := column(r.End)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("range %s:%s ends before it starts", r.Start, r.End)
	}
	return start, end, nil
}
