package status

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseUevent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want BatteryState
	}{
		{
			name: "discharging",
			in:   "POWER_SUPPLY_NAME=BAT1\nPOWER_SUPPLY_STATUS=Discharging\nPOWER_SUPPLY_CAPACITY=64\n",
			want: BatteryState{Percentage: 64},
		},
		{
			name: "charging",
			in:   "POWER_SUPPLY_STATUS=Charging\nPOWER_SUPPLY_CAPACITY=12",
			want: BatteryState{Percentage: 12, Charging: true},
		},
		{
			name: "critical charging",
			in:   "POWER_SUPPLY_STATUS=Critical (Charging)\nPOWER_SUPPLY_CAPACITY=3",
			want: BatteryState{Percentage: 3, Charging: true, Critical: true},
		},
		{
			name: "critical",
			in:   "POWER_SUPPLY_STATUS=Critical\nPOWER_SUPPLY_CAPACITY=2",
			want: BatteryState{Percentage: 2, Critical: true},
		},
		{
			name: "driver error",
			in:   "POWER_SUPPLY_STATUS=None\nPOWER_SUPPLY_CAPACITY=0",
			want: BatteryState{Percentage: 0, Error: true},
		},
		{
			name: "no status line",
			in:   "garbage\nPOWER_SUPPLY_CAPACITY=100",
			want: BatteryState{Percentage: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUevent(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ParseUevent: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseUevent = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseUevent_InvalidCapacity(t *testing.T) {
	for _, in := range []string{
		"POWER_SUPPLY_STATUS=Full",
		"POWER_SUPPLY_CAPACITY=lots",
		"POWER_SUPPLY_CAPACITY=300",
	} {
		if _, err := ParseUevent(strings.NewReader(in)); !errors.Is(err, ErrInvalidData) {
			t.Errorf("ParseUevent(%q) error = %v, want ErrInvalidData", in, err)
		}
	}
}

func TestClockText(t *testing.T) {
	// 2024-01-01 was a Monday.
	tm := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
	if got := ClockText(tm); got != "Mon 9:05" {
		t.Fatalf("ClockText = %q, want %q", got, "Mon 9:05")
	}
	if got := BarClockText(tm.Add(14 * time.Hour)); got != "23:05" {
		t.Fatalf("BarClockText = %q, want %q", got, "23:05")
	}
}

func TestPoller(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uevent")
	if err := os.WriteFile(path, []byte("POWER_SUPPLY_STATUS=Charging\nPOWER_SUPPLY_CAPACITY=40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC)
	p := NewPoller(PollerConfig{BatteryPath: path, Now: func() time.Time { return now }})

	st := p.Status()
	if st.Battery == nil || st.Battery.Percentage != 40 || !st.Battery.Charging {
		t.Fatalf("Status().Battery = %+v", st.Battery)
	}
	if st.Clock != "Tue 18:30" {
		t.Fatalf("Status().Clock = %q", st.Clock)
	}
	if st.Battery.Text() != "40%" {
		t.Fatalf("Text() = %q", st.Battery.Text())
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	p.Check()
	st = p.Status()
	if st.Battery != nil || st.BatteryError == "" {
		t.Fatalf("Status() after removal = %+v", st)
	}
}
