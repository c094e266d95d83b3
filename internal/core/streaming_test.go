package core

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
)

func TestSourceReader_BOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Country Name,Year")...),
			expected: "Country Name,Year",
		},
		{
			name:     "file without BOM",
			input:    []byte("Country Name,Year"),
			expected: "Country Name,Year",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: "??abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewSourceReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSourceReader_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("Sri Lanka,2010"),
			expected: "Sri Lanka,2010",
		},
		{
			name:     "valid multibyte",
			input:    []byte("CO₂ emissions"),
			expected: "CO₂ emissions",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "BOM then invalid byte",
			input:    []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewSourceReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSourceReader_SmallBuffers(t *testing.T) {
	input := "Indicator,CO₂ per capita,Forêt\n"

	r := NewSourceReader(iotest.OneByteReader(bytes.NewReader([]byte(input))))
	var out bytes.Buffer
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if out.String() != input {
		t.Errorf("got %q, want %q", out.String(), input)
	}
}

// The compiler rejects a byte order mark anywhere but the start of a file,
// so the BOM may only appear in this package as an escape.
func TestPackageSources_NoLiteralBOM(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if i := bytes.Index(data, utf8BOM); i >= 0 {
			t.Errorf("%s: literal byte order mark at offset %d", f, i)
		}
	}
}
