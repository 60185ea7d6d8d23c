package statement

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string // YYYY-MM-DD
		wantErr bool
	}{
		{input: "2024-02-01", want: "2024-02-01"},
		{input: "2024-12-31", want: "2024-12-31"},
		// Day-first convention: 03/04/2024 is April 3rd, never March 4th.
		{input: "03/04/2024", want: "2024-04-03"},
		{input: "3/4/2024", want: "2024-04-03"},
		{input: "03-04-2024", want: "2024-04-03"},
		{input: "01/02/2024", want: "2024-02-01"},
		{input: "31/12/2024", want: "2024-12-31"},
		{input: "2 Jan 2006", want: "2006-01-02"},
		{input: "15 March 2024", want: "2024-03-15"},
		{input: " 2024-02-01 ", want: "2024-02-01"},
		{input: "", wantErr: true},
		{input: "not a date", wantErr: true},
		{input: "2024/02/01", wantErr: true},
		{input: "13/13/2024", wantErr: true},
		{input: "31/02/2024", wantErr: true}, // no Feb 31, must not roll into March
		{input: "1/2/24", wantErr: true},     // two-digit year not accepted
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDateISORoundTrip(t *testing.T) {
	inputs := []string{"2023-01-01", "2024-02-29", "2025-06-15"}
	for _, in := range inputs {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) unexpected error: %v", in, err)
		}
		if got.Format("2006-01-02") != in {
			t.Errorf("ParseDate(%q) round-trip = %s", in, got.Format("2006-01-02"))
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseDate(%q) location = %v, want UTC", in, got.Location())
		}
	}
}
