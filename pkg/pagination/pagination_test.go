package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{name: "defaults", in: Params{}, want: Params{Page: 1, Limit: 10}},
		{name: "negative", in: Params{Page: -3, Limit: -1}, want: Params{Page: 1, Limit: 10}},
		{name: "capped", in: Params{Page: 4, Limit: 500}, want: Params{Page: 4, Limit: MaxLimit}},
		{name: "passthrough", in: Params{Page: 2, Limit: 25}, want: Params{Page: 2, Limit: 25}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 21)
	if meta.Pages != 3 || meta.Total != 21 || meta.Page != 2 || meta.Limit != 10 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if empty := NewMeta(Params{}, 0); empty.Pages != 0 {
		t.Fatalf("expected zero pages for empty result, got %d", empty.Pages)
	}
}
