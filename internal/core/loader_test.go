package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const header = "Country Name,Indicator Name,Indicator Code,Year,Value\n"

// recordOpts ignores empty-vs-nil differences in Extra.
var recordOpts = cmpopts.EquateEmpty()

func load(t *testing.T, csv string) *Dataset {
	t.Helper()
	ds, err := Load(strings.NewReader(csv), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return ds
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_TrimsCountryAndCoerces(t *testing.T) {
	ds := load(t, header+
		` Sri Lanka ,CO2 emissions,EN.ATM.CO2E.PC,2010,0.9`+"\n")

	want := []Record{{
		Country:       "Sri Lanka",
		IndicatorName: "CO2 emissions",
		IndicatorCode: "EN.ATM.CO2E.PC",
		Year:          2010,
		Value:         0.9,
	}}
	if diff := cmp.Diff(want, ds.Records, recordOpts); diff != "" {
		t.Errorf("Load() records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DropsNonNumericRows(t *testing.T) {
	ds := load(t, header+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2010,n/a\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,abc,1.0\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2011,\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2012,1.1\n")

	if len(ds.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(ds.Records))
	}
	if ds.Records[0].Year != 2012 {
		t.Errorf("kept year = %v, want 2012", ds.Records[0].Year)
	}
	if ds.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", ds.Dropped)
	}
	if ds.CountryRows != 4 {
		t.Errorf("CountryRows = %d, want 4", ds.CountryRows)
	}
}

func TestLoad_FiltersCountry(t *testing.T) {
	ds := load(t, header+
		"India,CO2 emissions,EN.ATM.CO2E.PC,2010,1.7\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2010,0.9\n"+
		"sri lanka,CO2 emissions,EN.ATM.CO2E.PC,2011,0.8\n")

	if ds.RawRows != 3 {
		t.Errorf("RawRows = %d, want 3", ds.RawRows)
	}
	if len(ds.Records) != 1 {
		t.Fatalf("got %d records, want 1 (country match is exact)", len(ds.Records))
	}
	if len(ds.Records) > ds.CountryRows {
		t.Errorf("kept %d > country rows %d", len(ds.Records), ds.CountryRows)
	}
}

func TestLoad_OtherCountry(t *testing.T) {
	ds, err := Load(strings.NewReader(header+
		"India,CO2 emissions,EN.ATM.CO2E.PC,2010,1.7\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2010,0.9\n"),
		LoadOptions{Country: "India"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Value != 1.7 {
		t.Errorf("Load(India) records = %+v", ds.Records)
	}
	if ds.Country != "India" {
		t.Errorf("Country = %q, want India", ds.Country)
	}
}

func TestLoad_HeaderVariants(t *testing.T) {
	ds := load(t, " country name ,INDICATOR NAME,Indicator Code , year,Value\n"+
		"Sri Lanka,  Forest area  , AG.LND.FRST.ZS ,2000,33.5\n")

	if len(ds.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(ds.Records))
	}
	rec := ds.Records[0]
	if rec.IndicatorName != "Forest area" {
		t.Errorf("IndicatorName = %q, want trimmed", rec.IndicatorName)
	}
	if rec.IndicatorCode != " AG.LND.FRST.ZS " {
		t.Errorf("IndicatorCode = %q, want untouched", rec.IndicatorCode)
	}
}

func TestLoad_PreservesSourceOrder(t *testing.T) {
	ds := load(t, header+
		"Sri Lanka,B,B1,2012,3\n"+
		"Sri Lanka,A,A1,2010,1\n"+
		"Sri Lanka,B,B1,2011,2\n")

	var years []float64
	for _, r := range ds.Records {
		years = append(years, r.Year)
	}
	if diff := cmp.Diff([]float64{2012, 2010, 2011}, years); diff != "" {
		t.Errorf("source order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExtraColumns(t *testing.T) {
	ds := load(t, "Country Name,Indicator Name,Indicator Code,Year,Value, Source \n"+
		"Sri Lanka,CO2,C1,2010,0.9,WDI\n")

	if diff := cmp.Diff([]string{"Source"}, ds.ExtraColumns); diff != "" {
		t.Errorf("ExtraColumns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"WDI"}, ds.Records[0].Extra); diff != "" {
		t.Errorf("Extra mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_BOM(t *testing.T) {
	ds := load(t, "\xEF\xBB\xBF"+header+"Sri Lanka,CO2,C1,2010,0.9\n")
	if len(ds.Records) != 1 {
		t.Errorf("got %d records, want 1", len(ds.Records))
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds := load(t, header)

	if len(ds.Records) != 0 || ds.RawRows != 0 || ds.CountryRows != 0 {
		t.Errorf("got %d records, %d raw rows, %d country rows; want an empty dataset",
			len(ds.Records), ds.RawRows, ds.CountryRows)
	}
	if got := Indicators(ds.Records); len(got) != 0 {
		t.Errorf("Indicators() = %v, want none", got)
	}
}

func TestLoad_RepeatedHeaderFirstWins(t *testing.T) {
	ds := load(t, "Country Name,Indicator Name,Indicator Code,Year,Value,Value\n"+
		"Sri Lanka,CO2,C1,2010,0.9,n/a\n")

	want := []Record{{
		Country:       "Sri Lanka",
		IndicatorName: "CO2",
		IndicatorCode: "C1",
		Year:          2010,
		Value:         0.9,
		Extra:         []string{"n/a"},
	}}
	if diff := cmp.Diff(want, ds.Records, recordOpts); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Value"}, ds.ExtraColumns); diff != "" {
		t.Errorf("ExtraColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExportedHeader(t *testing.T) {
	ds := load(t, "Country Name,Indicator Name,Indicator Code,Year,Indicator Value\n"+
		"Sri Lanka,CO2,C1,2010,0.9\n")

	if len(ds.Records) != 1 || ds.Records[0].Value != 0.9 {
		t.Errorf("records = %+v, want one with value 0.9", ds.Records)
	}
	if len(ds.ExtraColumns) != 0 {
		t.Errorf("ExtraColumns = %v, want none", ds.ExtraColumns)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg []string
	}{
		{
			name:    "missing columns",
			input:   "Country Name,Indicator Name,Notes\nSri Lanka,CO2,x\n",
			wantErr: ErrMissingColumns,
			wantMsg: []string{"Indicator Code", "Year", "Value"},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptySource,
		},
		{
			name:    "ragged rows",
			input:   header + "Sri Lanka,CO2,C1,2010\n",
			wantErr: ErrInvalidCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), LoadOptions{Source: "test.csv"})
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !IsDataLoadError(err) {
				t.Errorf("error %v is not a DataLoadError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
			for _, s := range tt.wantMsg {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q does not name %q", err.Error(), s)
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "data.csv", header+"Sri Lanka,CO2,C1,2010,0.9\n")

	ds, err := LoadFile(path, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if ds.Source.Path != path || ds.Source.Size == 0 || ds.Source.ModTime.IsZero() {
		t.Errorf("Source = %+v, want a filled signature", ds.Source)
	}
	if ds.LoadID.String() == "" {
		t.Error("LoadID not set")
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("LoadFile() error = %v, want ErrSourceNotFound", err)
	}
	if MapError(err).Code != "DATA001" {
		t.Errorf("MapError code = %q, want DATA001", MapError(err).Code)
	}
}

func TestLoadFile_Directory(t *testing.T) {
	_, err := LoadFile(t.TempDir(), LoadOptions{})
	if err == nil {
		t.Fatal("LoadFile(dir) error = nil")
	}
	if MapError(err).Code != "FILE001" {
		t.Errorf("MapError code = %q, want FILE001", MapError(err).Code)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	ds := load(t, header+
		" Sri Lanka ,CO2 emissions ,EN.ATM.CO2E.PC,2010,0.9\n"+
		"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2011,1e-1\n"+
		"Sri Lanka,Forest,F1,2010,n/a\n")

	once := Normalize(ds.Records, DefaultCountry)
	if diff := cmp.Diff(ds.Records, once, recordOpts); diff != "" {
		t.Errorf("Normalize(Load()) changed records (-load +normalize):\n%s", diff)
	}
	twice := Normalize(once, DefaultCountry)
	if diff := cmp.Diff(once, twice, recordOpts); diff != "" {
		t.Errorf("Normalize not idempotent (-once +twice):\n%s", diff)
	}
}

func TestExportFullCSV_ReloadsIdentically(t *testing.T) {
	ds := load(t, "Country Name,Indicator Name,Indicator Code,Year,Value,Source\n"+
		" Sri Lanka , CO2 ,\"C,1\",2010,0.9,WDI\n"+
		"Sri Lanka,CO2,\"C,1\",2011.0,1e-3,\n"+
		"Sri Lanka,Forest,F1,2010,33,x\n")

	sel := SelectIndicator(ds.Records, "CO2")
	data, err := ExportFullCSV(ds, sel.Records)
	if err != nil {
		t.Fatalf("ExportFullCSV() error = %v", err)
	}

	again := load(t, string(data))
	if diff := cmp.Diff(sel.Records, again.Records, recordOpts); diff != "" {
		t.Errorf("reloaded records mismatch (-export +reload):\n%s", diff)
	}
	if diff := cmp.Diff(ds.ExtraColumns, again.ExtraColumns); diff != "" {
		t.Errorf("extra columns mismatch (-want +got):\n%s", diff)
	}
}
