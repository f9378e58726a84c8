package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/touchshell/touchshell/internal/runtimepath"
	"github.com/touchshell/touchshell/internal/shell"
)

const defaultTimeout = 5 * time.Second

// ErrDaemonError is wrapped by every error the daemon reports in an ERROR
// response.
var ErrDaemonError = errors.New("daemon error")

// Client sends one request per connection to the daemon socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

func NewClient() *Client {
	return NewClientForSocket("")
}

// NewClientForSocket targets socketPath, or the default socket when empty. An
// unresolvable default surfaces as a dial error on first use.
func NewClientForSocket(socketPath string) *Client {
	path, _ := runtimepath.ResolveSocket(socketPath)
	return &Client{socketPath: path, timeout: defaultTimeout}
}

// call performs a round trip and decodes the response data into out when out
// is non-nil.
func (c *Client) call(cmd CommandType, out any) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	// Encode terminates the request with the newline the server reads up to.
	if err := json.NewEncoder(conn).Encode(Request{Command: cmd}); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd, err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("failed to read %s response: %w", cmd, err)
	}
	if resp.Status == "ERROR" {
		return fmt.Errorf("%w: %s", ErrDaemonError, resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

func (c *Client) Reload() error { return c.call(CommandReload, nil) }

func (c *Client) Ping() error { return c.call(CommandPing, nil) }

func (c *Client) GetStatus() (*StatusData, error) {
	var st StatusData
	if err := c.call(CommandGetStatus, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListSpaces returns the space stack, back to front.
func (c *Client) ListSpaces() ([]shell.SpaceInfo, error) {
	var data SpacesData
	if err := c.call(CommandListSpaces, &data); err != nil {
		return nil, err
	}
	return data.Spaces, nil
}
