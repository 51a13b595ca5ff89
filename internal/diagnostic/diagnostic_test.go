package diagnostic

import (
	"encoding/json"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"error", SeverityError, false},
		{"ERROR", SeverityError, false},
		{"warn", SeverityWarning, false},
		{"warning", SeverityWarning, false},
		{"note", SeverityInfo, false},
		{"info", SeverityInfo, false},
		{"hint", SeverityStyle, false},
		{"style", SeverityStyle, false},
		{"bogus", SeverityError, true},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeverityJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(SeverityWarning)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"warning"` {
		t.Errorf("Marshal = %s, want \"warning\"", data)
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"note"`), &s); err != nil {
		t.Fatal(err)
	}
	if s != SeverityInfo {
		t.Errorf("Unmarshal(note) = %v, want info", s)
	}
}

func TestSeverityOrdering(t *testing.T) {
	t.Parallel()
	if !SeverityError.IsMoreSevereThan(SeverityWarning) {
		t.Error("error should be more severe than warning")
	}
	if !SeverityWarning.IsAtLeast(SeverityStyle) {
		t.Error("warning should be at least style")
	}
	if SeverityInfo.IsAtLeast(SeverityWarning) {
		t.Error("info should not be at least warning")
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	base := New(NewPointLocation("a.sh", 10, 4), "SC1000", "msg", SeverityWarning)

	tests := []struct {
		name  string
		other Diagnostic
		want  int
	}{
		{"equal", base, 0},
		{"later line", New(NewPointLocation("a.sh", 11, 0), "SC1000", "msg", SeverityWarning), -1},
		{"earlier column", New(NewPointLocation("a.sh", 10, 2), "SC1000", "msg", SeverityWarning), 1},
		{"more severe", New(NewPointLocation("a.sh", 10, 4), "SC1000", "msg", SeverityError), 1},
		{"rule tie-break", New(NewPointLocation("a.sh", 10, 4), "SC2000", "msg", SeverityWarning), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compare(base, tt.other)
			if sign(got) != tt.want {
				t.Errorf("Compare() = %d, want sign %d", got, tt.want)
			}
		})
	}
}

func TestLocationKinds(t *testing.T) {
	t.Parallel()
	if !NewFileLocation("a").IsFileLevel() {
		t.Error("file location should be file-level")
	}
	if NewLineLocation("a", 1).IsFileLevel() {
		t.Error("line location should not be file-level")
	}
	if !NewLineLocation("a", 3).IsPointLocation() {
		t.Error("line location should be a point location")
	}
}

func TestWithFile(t *testing.T) {
	t.Parallel()
	d := New(NewLineLocation("", 3), "r", "m", SeverityInfo)
	got := d.WithFile("b.txt")
	if got.File() != "b.txt" {
		t.Errorf("File() = %q, want b.txt", got.File())
	}
	if d.File() != "" {
		t.Error("WithFile must not modify the receiver")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
