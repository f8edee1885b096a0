package naming

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "Plain", input: "Reports"},
		{name: "Japanese", input: "電気設備"},
		{name: "WithExtension", input: "manual.pdf"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Slash", input: "a/b", wantErr: true},
		{name: "Backslash", input: `a\b`, wantErr: true},
		{name: "Colon", input: "a:b", wantErr: true},
		{name: "Star", input: "a*b", wantErr: true},
		{name: "Question", input: "a?b", wantErr: true},
		{name: "Quote", input: `a"b`, wantErr: true},
		{name: "Angle", input: "a<b>", wantErr: true},
		{name: "Pipe", input: "a|b", wantErr: true},
		{name: "ReservedUpper", input: "CON", wantErr: true},
		{name: "ReservedLower", input: "nul", wantErr: true},
		{name: "ReservedCom", input: "COM7", wantErr: true},
		{name: "ReservedLptMixed", input: "lPt3", wantErr: true},
		{name: "ReservedWithExt", input: "aux.txt", wantErr: true},
		{name: "ReservedPrefixOk", input: "CONTRACT"},
		{name: "TooLong", input: strings.Repeat("a", 256), wantErr: true},
		{name: "MaxLength", input: strings.Repeat("a", 255)},
		{name: "MultibyteLength", input: strings.Repeat("設", 255)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"図面.DWG", "dwg"},
	}
	for _, tt := range tests {
		if got := Extension(tt.input); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
