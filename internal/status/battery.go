// Package status provides the battery and clock readings shown in the
// shell's status bar and reported over IPC.
package status

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultBatteryPath is the uevent file read when none is configured.
const DefaultBatteryPath = "/sys/class/power_supply/BAT1/uevent"

// ErrInvalidData is returned when a uevent file lacks a usable capacity.
var ErrInvalidData = errors.New("invalid battery data")

// BatteryState is one battery reading.
type BatteryState struct {
	Percentage int  `json:"percentage"`
	Charging   bool `json:"charging"`
	// Error is set when the driver reports a status of "None".
	Error    bool `json:"error"`
	Critical bool `json:"critical"`
}

// Text returns the percentage label drawn next to the battery icon.
func (b BatteryState) Text() string {
	return strconv.Itoa(b.Percentage) + "%"
}

// ParseUevent reads POWER_SUPPLY_* key/value lines.
func ParseUevent(r io.Reader) (BatteryState, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		values[k] = v
	}
	if err := scanner.Err(); err != nil {
		return BatteryState{}, err
	}

	raw, ok := values["POWER_SUPPLY_CAPACITY"]
	if !ok {
		return BatteryState{}, fmt.Errorf("%w: no POWER_SUPPLY_CAPACITY", ErrInvalidData)
	}
	pct, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 8)
	if err != nil {
		return BatteryState{}, fmt.Errorf("%w: capacity %q", ErrInvalidData, raw)
	}

	st := values["POWER_SUPPLY_STATUS"]
	return BatteryState{
		Percentage: int(pct),
		Charging:   st == "Charging" || st == "Critical (Charging)",
		Error:      st == "None",
		Critical:   strings.HasPrefix(st, "Critical"),
	}, nil
}

// ReadBattery reads and parses the uevent file at path.
func ReadBattery(path string) (BatteryState, error) {
	f, err := os.Open(path)
	if err != nil {
		return BatteryState{}, err
	}
	defer f.Close()

	state, err := ParseUevent(f)
	if err != nil {
		return BatteryState{}, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}
