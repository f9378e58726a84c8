package config

import "testing"

func TestDiff(t *testing.T) {
	base := DefaultConfig()

	same, err := Diff(base, DefaultConfig())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(same) != 0 {
		t.Fatalf("expected no changes between defaults, got %+v", same)
	}

	edited := DefaultConfig()
	edited.X11.FrameRate = 30
	edited.HomeBar.RegionHeight = 24

	changes, err := Diff(base, edited)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	want := []Change{
		{Path: "homebar.region_height", Old: "18", New: "24"},
		{Path: "x11.frame_rate", Old: "60", New: "30"},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %+v, want %+v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestFlatten(t *testing.T) {
	flat, err := Flatten(DefaultConfig())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got := flat["x11.frame_rate"]; got != "60" {
		t.Fatalf("x11.frame_rate = %q, want 60", got)
	}
	for path := range flat {
		if path == "x11" || path == "homebar" {
			t.Fatalf("section %q should not be a leaf", path)
		}
	}
}
