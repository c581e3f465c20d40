package encoding

import "testing"

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		charset string
		want    string
	}{
		{"utf-8 passthrough", []byte("상자"), "", "상자"},
		{"utf-8 bom", []byte("\xEF\xBB\xBFo Box"), "UTF-8", "o Box"},
		{"euc-kr", []byte{0xBB, 0xF3, 0xC0, 0xDA}, "euc-kr", "상자"},
		{"latin1", []byte{'c', 'a', 'f', 0xE9}, "windows-1252", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUTF8(tt.data, tt.charset)
			if err != nil {
				t.Fatalf("ToUTF8 failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestToUTF8Invalid(t *testing.T) {
	// A lone EUC-KR lead byte decodes to U+FFFD rather than failing.
	got, err := ToUTF8([]byte{'o', ' ', 0xBB}, "euc-kr")
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	if string(got) != "o \uFFFD" {
		t.Errorf("expected replacement character, got %q", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
	if _, err := ToUTF8([]byte("x"), "klingon"); err == nil {
		t.Error("expected ToUTF8 to fail for unknown encoding")
	}
}
