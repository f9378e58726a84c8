package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/daemon"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/logging"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "spaces":
		os.Exit(runSpaces(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "replay":
		os.Exit(runReplay(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: touchshell <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the shell on the X display (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  spaces              List the space stack")
	fmt.Fprintln(w, "  reload              Ask the daemon to reload its config")
	fmt.Fprintln(w, "  watch               Open the interactive dashboard")
	fmt.Fprintln(w, "  replay <script>     Play a YAML input script against an offline shell")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config init         Write a config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'touchshell <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that prints usage lines to stderr.
func newFlagSet(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
		if len(usage) > 0 {
			fmt.Fprintln(os.Stderr, "")
		}
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags returns -1 when parsing succeeded, otherwise the exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "Usage: touchshell daemon [--path PATH]")
	path := fs.String("path", "", "Config file path (default: ~/.config/touchshell/config.yaml)")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	configPath := *path
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
		configPath = p
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closer, err := logging.New(res.Config.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	err = daemon.Run(context.Background(), daemon.Options{
		ConfigPath: configPath,
		Config:     res.Config,
		Logger:     logger,
	})
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err != nil {
		// Unmappable input and lost display connections end up here.
		log.Fatalf("touchshell daemon: %v", err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Usage: touchshell status [--json] [--socket PATH]", "Show daemon status via IPC.")
	asJSON := fs.Bool("json", false, "Print JSON")
	socket := fs.String("socket", "", "IPC socket path")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClientForSocket(*socket).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	fmt.Print(formatStatus(status))
	return 0
}

func formatStatus(st *ipc.StatusData) string {
	var b strings.Builder
	top := "-"
	if st.TopSpace != nil {
		top = fmt.Sprintf("%d (%s)", *st.TopSpace, st.TopApp)
	}
	battery := "-"
	if st.Battery != nil {
		battery = st.Battery.Text()
	} else if st.BatteryError != "" {
		battery = "error: " + st.BatteryError
	}
	fmt.Fprintf(&b, "daemon_running:  %v\n", st.DaemonRunning)
	fmt.Fprintf(&b, "backend:         %s\n", st.Backend)
	fmt.Fprintf(&b, "uptime_seconds:  %d\n", st.UptimeSeconds)
	fmt.Fprintf(&b, "spaces:          %d\n", st.SpaceCount)
	fmt.Fprintf(&b, "views:           %d\n", st.ViewCount)
	fmt.Fprintf(&b, "top_space:       %s\n", top)
	fmt.Fprintf(&b, "home_bar:        %s\n", st.HomeBar)
	fmt.Fprintf(&b, "pointer_grabbed: %v\n", st.PointerGrabbed)
	fmt.Fprintf(&b, "touch_grabbed:   %v\n", st.TouchGrabbed)
	fmt.Fprintf(&b, "events:          %d\n", st.Events)
	fmt.Fprintf(&b, "frames:          %d\n", st.Frames)
	fmt.Fprintf(&b, "battery:         %s\n", battery)
	fmt.Fprintf(&b, "clock:           %s\n", st.Clock)
	return b.String()
}

func runSpaces(args []string) int {
	fs := newFlagSet("spaces", "Usage: touchshell spaces [--json] [--socket PATH]", "List spaces, top of the stack first.")
	asJSON := fs.Bool("json", false, "Print JSON")
	socket := fs.String("socket", "", "IPC socket path")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}

	spaces, err := ipc.NewClientForSocket(*socket).ListSpaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(spaces)
	}
	fmt.Println(renderSpacesTable(spaces))
	return 0
}

func renderSpacesTable(spaces []shell.SpaceInfo) string {
	if len(spaces) == 0 {
		return "no spaces"
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SPACE", "APP", "VIEWS", "POINTER", "HOME BAR", "TOP").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for i := len(spaces) - 1; i >= 0; i-- {
		sp := spaces[i]
		target := "-"
		if sp.PointerTarget != nil {
			target = strconv.FormatUint(uint64(*sp.PointerTarget), 10)
		}
		top := ""
		if sp.Top {
			top = "*"
		}
		t.Row(strconv.Itoa(int(sp.ID)), sp.AppID, strconv.Itoa(len(sp.Surfaces)), target, sp.HomeBar, top)
	}
	return t.String()
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "Usage: touchshell reload [--socket PATH]")
	socket := fs.String("socket", "", "IPC socket path")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}
	if err := ipc.NewClientForSocket(*socket).Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func runWatch(args []string) int {
	fs := newFlagSet("watch",
		"Usage: touchshell watch [--path PATH] [--socket PATH]",
		"Live dashboard of the daemon's spaces with a settings editor.",
		"Keys: tab/1-3 switch tabs, e edit settings, ctrl-s save, q quit.")
	path := fs.String("path", "", "Config file path (default: ~/.config/touchshell/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}

	if err := tui.Run(*path, ipc.NewClientForSocket(*socket)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
