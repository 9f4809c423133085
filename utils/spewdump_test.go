package utils

import (
	"strings"
	"testing"
)

func TestSDump(t *testing.T) {
	type window struct {
		Title string
		Size  []int
	}
	out := SDump(window{Title: "demo", Size: []int{800, 600}})
	for _, want := range []string{`Title: (string) (len=4) "demo"`, "(len=2)", "800", "600"} {
		if !strings.Contains(out, want) {
			t.Errorf("SDump() = %q; missing %q", out, want)
		}
	}
	if strings.Contains(out, "cap=") {
		t.Errorf("SDump() = %q; capacities must be hidden", out)
	}
}
