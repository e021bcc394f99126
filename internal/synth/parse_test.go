package synth

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		err  bool
	}{
		{"bare list", `[{"a":1}]`, `[{"a":1}]`, false},
		{"prose around list", "Đây là kết quả:\n[{\"a\":1}]\nHết.", `[{"a":1}]`, false},
		{"fenced object", "```json\n{\"bo_cau_hoi\":[]}\n```", `{"bo_cau_hoi":[]}`, false},
		{"object before list", `{"x":[1]} trailing`, `{"x":[1]}`, false},
		{"no json", "Xin lỗi, tôi không thể trả lời.", "", true},
		{"unclosed", `[{"a":1}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.err {
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("err = %v, want ErrNoJSON", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ExtractJSON = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"list", `[{"input":"a"},{"input":"b"},3]`, 2},
		{"wrapped", `{"bo_cau_hoi":[{"cau_hoi":"a"}]}`, 1},
		{"other wrapper", `{"items":[{"input":"a"},{"input":"b"}]}`, 2},
		{"single object", `{"cau_hoi":"a","dap_an":"Đúng"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseItems(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}

	if _, err := ParseItems(`[{"input": "a",}]`); err == nil {
		t.Error("expected error for invalid JSON span")
	}
}
