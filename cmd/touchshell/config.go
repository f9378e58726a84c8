package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/tui"
)

const pathUsage = "Config file path (default: ~/.config/touchshell/config.yaml)"

const configUsage = `Usage:
  touchshell config validate [--path PATH]
  touchshell config print [--path PATH] [--effective|--defaults]
  touchshell config explain [--path PATH] <yaml.path>
  touchshell config diff [--path PATH]
  touchshell config init [--path PATH] [--force] [--interactive]`

var configCommands = map[string]func(args []string) int{
	"validate": configValidate,
	"print":    configPrint,
	"explain":  configExplain,
	"diff":     configDiff,
	"init":     configInit,
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, configUsage)
		return 2
	}
	cmd, ok := configCommands[args[0]]
	if !ok {
		if args[0] != "help" && args[0] != "-h" && args[0] != "--help" {
			fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		}
		fmt.Fprintln(os.Stderr, configUsage)
		return 2
	}
	return cmd(args[1:])
}

// loadFromFlags parses a --path flag set and loads the file it names.
func loadFromFlags(name string, args []string, usage ...string) (*config.LoadResult, []string, int) {
	fs := newFlagSet(name, usage...)
	path := fs.String("path", "", pathUsage)
	if rc := parseFlags(fs, args); rc >= 0 {
		return nil, nil, rc
	}
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 1
	}
	return res, fs.Args(), -1
}

func configValidate(args []string) int {
	if _, _, rc := loadFromFlags("validate", args); rc >= 0 {
		return rc
	}
	fmt.Println("config: ok")
	return 0
}

func configPrint(args []string) int {
	fs := newFlagSet("print")
	path := fs.String("path", "", pathUsage)
	defaults := fs.Bool("defaults", false, "Print the built-in defaults and ignore files")
	_ = fs.Bool("effective", true, "Print the merged config (default)")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, f := range res.Files {
			fmt.Printf("# loaded: %s\n", f)
		}
		cfg = res.Config
	}
	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func configExplain(args []string) int {
	res, rest, rc := loadFromFlags("explain", args, "Usage: touchshell config explain [--path PATH] <yaml.path>")
	if rc >= 0 {
		return rc
	}
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "explain needs exactly one <yaml.path>")
		return 2
	}

	value, src, err := config.Explain(res, rest[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("path: %s\nsource: %s\nvalue:\n%s", rest[0], src, out)
	return 0
}

// configDiff lists every setting that differs from the built-in defaults.
func configDiff(args []string) int {
	res, _, rc := loadFromFlags("diff", args)
	if rc >= 0 {
		return rc
	}
	changes, err := config.Diff(config.DefaultConfig(), res.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(changes) == 0 {
		fmt.Println("config: matches defaults")
		return 0
	}
	for _, c := range changes {
		fmt.Printf("%s: %s -> %s\n", c.Path, displayValue(c.Old), displayValue(c.New))
	}
	return 0
}

func configInit(args []string) int {
	fs := newFlagSet("init")
	path := fs.String("path", "", pathUsage)
	force := fs.Bool("force", false, "Overwrite an existing file")
	interactive := fs.Bool("interactive", false, "Fill in settings with a form before writing")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}
	return runConfigInit(*path, *force, *interactive)
}

func runConfigInit(path string, force, interactive bool) int {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
		return 1
	}

	cfg := config.DefaultConfig()
	if interactive {
		edited, err := tui.RunInit(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = edited
	}
	if err := cfg.SaveTo(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s\n", path)
	return 0
}

func displayValue(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
