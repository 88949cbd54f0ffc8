package util

import "testing"

func TestParseLeadingNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain", input: "5", want: 5, ok: true},
		{name: "ordinal", input: "5º", want: 5, ok: true},
		{name: "suffix letter", input: "121-A", want: 121, ok: true},
		{name: "thousands dot", input: "1.000", want: 1000, ok: true},
		{name: "art prefix", input: "Art. 7º", want: 7, ok: true},
		{name: "roman", input: "IV", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLeadingNumber(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
