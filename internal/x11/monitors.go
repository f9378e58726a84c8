package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor is one active RandR CRTC in root coordinates.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Monitors lists the enabled CRTCs, named after their first output.
func (c *Connection) Monitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	res, err := randr.GetScreenResources(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var out []Monitor
	for id, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		m := Monitor{
			ID:     id,
			Name:   fmt.Sprintf("crtc-%d", id),
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		if o, err := randr.GetOutputInfo(xc, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(o.Name)
		}
		out = append(out, m)
	}
	return out, nil
}

// Output returns the monitor the shell drives: the one under the pointer,
// else the first active monitor, else the whole root window.
func (c *Connection) Output() (Monitor, error) {
	monitors, err := c.Monitors()
	if err == nil && len(monitors) > 0 {
		px, py := -1, -1
		if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			px, py = int(pointer.RootX), int(pointer.RootY)
		}
		return pickOutput(monitors, px, py), nil
	}

	w, h, rootErr := c.RootSize()
	if rootErr != nil {
		return Monitor{}, rootErr
	}
	return Monitor{Name: "root", Width: w, Height: h}, nil
}

func pickOutput(monitors []Monitor, x, y int) Monitor {
	for _, m := range monitors {
		if m.Contains(x, y) {
			return m
		}
	}
	return monitors[0]
}
