package scanfmt

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tkoide3/scanfmt-go/pkg/scanfmt/worksheet"
)

func findingsHeader() []string {
	return []string{
		"Scan ID", "Source", "Imported", // A-C metadata
		"Severity", "Device", "Host", "Protocol", "CVE", "Port", "Name",
		"Synopsis", "Description", "Solution", "See Also", "CVSS", // D-O
	}
}

// finding builds one worksheet row. id fills the metadata columns, which the
// duplicate check must ignore.
func finding(id, severity, device, host, port, name string) []string {
	return []string{
		id, "nessus", "2026-08-20",
		severity, device, host, "tcp", "CVE-2026-0001", port, name,
		"synopsis", "description", "upgrade the package", "https://example.com/adv", "9.8",
	}
}

func scanGrid() [][]string {
	return [][]string{
		findingsHeader(),
		finding("1", "High", "db-1", "10.0.0.5", "5432", "Outdated PostgreSQL"),
		finding("2", "High", "db-1", "10.0.0.5", "5432", "Outdated PostgreSQL"), // duplicate of row 1 on D-O
		finding("3", "Info", "web-1", "10.0.0.9", "80", "Banner disclosure"),
		finding("4", "Critical", "fw-1", "10.0.0.1", "22", "Remote code execution"),
	}
}

func TestProcessWorksheetEndToEnd(t *testing.T) {
	f := worksheet.NewFake("scan.xlsx", scanGrid())
	opts := DefaultOptions()

	report, err := ProcessWorksheet(f, opts)
	if err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}

	// Metadata columns A-C hidden.
	for col := 0; col <= 2; col++ {
		if !f.HiddenCols[col] {
			t.Errorf("column %d should be hidden", col)
		}
	}
	if f.HiddenCols[3] {
		t.Error("column 3 should stay visible")
	}

	// One of the duplicate pair removed; 4 rows remain.
	if report.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", report.DuplicatesRemoved)
	}
	if len(f.Grid) != 4 {
		t.Fatalf("grid has %d rows, want 4", len(f.Grid))
	}

	// Sorted ascending by severity: Critical, High, Info.
	wantSeverities := []string{"Critical", "High", "Info"}
	for i, want := range wantSeverities {
		if got := f.Cell(i+1, 3); got != want {
			t.Errorf("row %d severity = %q, want %q", i+1, got, want)
		}
	}

	// The Info row is hidden by the filter but still present.
	if report.RowsHidden != 1 {
		t.Errorf("RowsHidden = %d, want 1", report.RowsHidden)
	}
	if !f.HiddenRows[3] {
		t.Error("Info row should be hidden")
	}
	if f.HiddenRows[1] {
		t.Error("Critical row should stay visible")
	}
	if f.Cell(3, 3) != "Info" {
		t.Error("hidden Info row must stay in the grid")
	}

	// Every occupied row at height 14.
	for row := 0; row < len(f.Grid); row++ {
		if f.Heights[row] != 14 {
			t.Errorf("row %d height = %v, want 14", row, f.Heights[row])
		}
	}

	// E, F, I, J, M autofitted in order.
	if !reflect.DeepEqual(f.AutoFitted, opts.Layout.AutoFitColumns) {
		t.Errorf("AutoFitted = %v, want %v", f.AutoFitted, opts.Layout.AutoFitColumns)
	}
}

func TestProcessWorksheetWrongSuffix(t *testing.T) {
	f := worksheet.NewFake("scan.csv", scanGrid())
	snap := f.Snapshot()

	_, err := ProcessWorksheet(f, DefaultOptions())
	if !errors.Is(err, ErrNotWorkbook) {
		t.Fatalf("err = %v, want ErrNotWorkbook", err)
	}
	if !reflect.DeepEqual(f, snap) {
		t.Error("failed validation must not mutate the worksheet")
	}
}

func TestProcessWorksheetSuffixCaseInsensitive(t *testing.T) {
	f := worksheet.NewFake("SCAN.XLSX", scanGrid())
	if _, err := ProcessWorksheet(f, DefaultOptions()); err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}
}

func TestProcessWorksheetNegativeSortColumn(t *testing.T) {
	f := worksheet.NewFake("scan.xlsx", scanGrid())
	snap := f.Snapshot()

	opts := DefaultOptions()
	opts.Layout.SortColumn = -1

	_, err := ProcessWorksheet(f, opts)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Step != "sort" {
		t.Errorf("Step = %q, want sort", verr.Step)
	}
	if !reflect.DeepEqual(f.Grid, snap.Grid) {
		t.Error("failed sort must not reorder or delete rows")
	}
}

func TestProcessWorksheetBadRowHeight(t *testing.T) {
	for _, height := range []float64{0, -1} {
		f := worksheet.NewFake("scan.xlsx", scanGrid())
		opts := DefaultOptions()
		opts.Layout.RowHeight = height

		_, err := ProcessWorksheet(f, opts)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("height %v: err = %v, want *ValidationError", height, err)
		}
		if len(f.Heights) != 0 {
			t.Errorf("height %v: row heights mutated: %v", height, f.Heights)
		}
	}
}

// The severity restriction must follow the configured severity column, not
// the first column of the filter range.
func TestProcessWorksheetSeverityColumnInsideFilterRange(t *testing.T) {
	grid := [][]string{
		{"ID", "Host", "Severity", "Name"},
		{"1", "db-1", "High", "Outdated PostgreSQL"},
		{"2", "web-1", "Info", "Banner disclosure"},
	}
	f := worksheet.NewFake("scan.xlsx", grid)

	opts := DefaultOptions()
	opts.Layout = Layout{
		HideStart:        0,
		HideEnd:          0,
		FilterStart:      1,
		FilterEnd:        3,
		SortColumn:       2,
		SeverityColumn:   2,
		DuplicateColumns: []int{1, 2, 3},
		KeepSeverities:   []string{"Critical", "High", "Low", "Medium"},
		RowHeight:        14,
		AutoFitColumns:   []int{3},
	}

	report, err := ProcessWorksheet(f, opts)
	if err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}
	if report.RowsHidden != 1 {
		t.Errorf("RowsHidden = %d, want 1", report.RowsHidden)
	}
	// Had the restriction read the filter's first column (Host), nothing
	// would match the allow-list and both rows would be hidden.
	if f.HiddenRows[1] {
		t.Error("High row should stay visible")
	}
	if !f.HiddenRows[2] {
		t.Error("Info row should be hidden")
	}
}

func TestProcessWorksheetSeverityColumnOutsideFilterRange(t *testing.T) {
	f := worksheet.NewFake("scan.xlsx", scanGrid())

	opts := DefaultOptions()
	opts.Layout.SeverityColumn = 1 // precedes the filter range

	if _, err := ProcessWorksheet(f, opts); err == nil {
		t.Fatal("expected error for severity column outside the filter range")
	}
}

func TestProcessWorksheetUsedRangeOffset(t *testing.T) {
	// Data starts at B2; absolute column indices must survive translation
	// into the used range's coordinates.
	grid := [][]string{
		{},
		{"", "Severity", "Host", "Name"},
		{"", "High", "db-1", "Outdated PostgreSQL"},
		{"", "High", "db-1", "Outdated PostgreSQL"},
		{"", "Medium", "web-1", "Weak ciphers"},
	}
	f := worksheet.NewFake("scan.xlsx", grid)

	opts := DefaultOptions()
	opts.Layout = Layout{
		HideStart:        0,
		HideEnd:          0,
		FilterStart:      1,
		FilterEnd:        3,
		SortColumn:       1,
		SeverityColumn:   1,
		DuplicateColumns: []int{1, 2, 3},
		KeepSeverities:   []string{"Critical", "High", "Low", "Medium"},
		RowHeight:        14,
		AutoFitColumns:   []int{2},
	}

	report, err := ProcessWorksheet(f, opts)
	if err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}
	if report.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", report.DuplicatesRemoved)
	}
	if report.RowsHidden != 0 {
		t.Errorf("RowsHidden = %d, want 0", report.RowsHidden)
	}
	// Header row of the used range untouched.
	if f.Cell(1, 1) != "Severity" {
		t.Errorf("header = %q, want Severity", f.Cell(1, 1))
	}
}

func TestProcessWorksheetEmptySheet(t *testing.T) {
	f := worksheet.NewFake("scan.xlsx", nil)

	report, err := ProcessWorksheet(f, DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}
	if report.DuplicatesRemoved != 0 || report.RowsHidden != 0 {
		t.Errorf("report = %+v, want zero counts", report)
	}
}

func TestProcessWorksheetDuplicateColumnsNotMutated(t *testing.T) {
	// Data offset from column A: translation must not write back into the
	// caller's column list.
	grid := [][]string{
		{"", "Severity", "Host"},
		{"", "High", "db-1"},
		{"", "High", "db-1"},
	}
	f := worksheet.NewFake("scan.xlsx", grid)

	opts := DefaultOptions()
	opts.Layout = Layout{
		HideStart:        1,
		HideEnd:          1,
		FilterStart:      1,
		FilterEnd:        2,
		SortColumn:       1,
		SeverityColumn:   1,
		DuplicateColumns: []int{1, 2},
		KeepSeverities:   []string{"High"},
		RowHeight:        14,
		AutoFitColumns:   nil,
	}
	given := make([]int, len(opts.Layout.DuplicateColumns))
	copy(given, opts.Layout.DuplicateColumns)

	if _, err := ProcessWorksheet(f, opts); err != nil {
		t.Fatalf("ProcessWorksheet failed: %v", err)
	}
	if !reflect.DeepEqual(opts.Layout.DuplicateColumns, given) {
		t.Errorf("caller's column list mutated: %v", opts.Layout.DuplicateColumns)
	}
}
