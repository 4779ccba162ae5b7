package registry

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestClean_StripsQuotesAndWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "홍길동", "홍길동"},
		{"surrounding spaces", "  홍길동  ", "홍길동"},
		{"single quotes", "'홍길동'", "홍길동"},
		{"double quotes", `"서울특별시 종로구"`, "서울특별시 종로구"},
		{"backticks", "`없음`", "없음"},
		{"mixed run", ` "'홍길동'" `, "홍길동"},
		{"quotes then spaces inside", `" 상의 흰색 "`, "상의 흰색"},
		{"inner quote kept", "상의 '빨강' 하의 검정", "상의 '빨강' 하의 검정"},
		{"trailing quote run", "키 160cm 추정''", "키 160cm 추정"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Clean(RawRecord{Name: strPtr(tt.in)})
			if out.Name == nil {
				t.Fatal("expected non-nil name")
			}
			if *out.Name != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, *out.Name, tt.want)
			}
		})
	}
}

func TestClean_AbsentFieldsStayAbsent(t *testing.T) {
	out := Clean(RawRecord{ID: json.Number("123")})

	if out.Name != nil || out.IncidentLocation != nil || out.PhotoBase64 != nil {
		t.Error("expected absent fields to pass through as nil")
	}
	if out.ID != json.Number("123") {
		t.Errorf("identifier changed: %s", out.ID)
	}
}

func TestClean_NumericFieldsUntouched(t *testing.T) {
	age := json.Number("7")
	now := json.Number("12")
	out := Clean(RawRecord{CurrentAge: &now, AgeWhenMissing: &age})

	if out.CurrentAge != &now || out.AgeWhenMissing != &age {
		t.Error("expected age fields to pass through unchanged")
	}
}

func TestClean_NFCFoldsDecomposedHangul(t *testing.T) {
	// "한" written as decomposed jamo (U+1112 U+1161 U+11AB).
	decomposed := "한"
	out := Clean(RawRecord{Name: strPtr(decomposed)})

	if *out.Name != "한" {
		t.Errorf("expected NFC fold to 한, got %q", *out.Name)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	orig := "'홍길동'"
	raw := RawRecord{Name: &orig}
	_ = Clean(raw)

	if orig != "'홍길동'" {
		t.Errorf("input mutated: %q", orig)
	}
}
