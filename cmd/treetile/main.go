package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/daemon"
	"github.com/1broseidon/treetile/internal/engine"
	"github.com/1broseidon/treetile/internal/hotkeys"
	"github.com/1broseidon/treetile/internal/ipc"
	"github.com/1broseidon/treetile/internal/tree"
	"github.com/1broseidon/treetile/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "tree":
		os.Exit(runTree(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: treetile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the treetile daemon (foreground)")
	fmt.Fprintln(w, "  move <direction>    Move the focused window left, right, up, or down")
	fmt.Fprintln(w, "  tree                Print the container tree")
	fmt.Fprintln(w, "  monitors            List connected monitors")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the daemon's configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'treetile <command> --help' for command-specific options.")
}

// newLogger builds the daemon logger: human-readable when stderr is a
// terminal, JSON when it is redirected to a file or journal.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile daemon [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	logger := newLogger(*debug)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}
	logger.Info("configuration loaded",
		"workspaces", len(cfg.Workspaces),
		"default_layout", cfg.General.DefaultLayout)

	backend, err := x11.New(logger)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Close()

	d := daemon.New(cfg, backend, logger)
	if err := d.Bootstrap(); err != nil {
		logger.Error("bootstrap failed", "error", err)
		return 1
	}

	server, err := ipc.NewServer(d.Tree(), d.Bus(), d.Do, d.Reload)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer server.Stop()

	if len(cfg.Keybindings) > 0 {
		keys, err := hotkeys.New(logger)
		if err != nil {
			logger.Warn("keybindings disabled", "error", err)
		} else {
			defer keys.Close()
			registerKeybindings(keys, d, cfg.Keybindings, logger)
			go keys.Run()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading configuration")
				if err := d.Reload(); err != nil {
					logger.Error("configuration reload failed", "error", err)
				}
			default:
				cancel()
				return
			}
		}
	}()

	logger.Info("treetile daemon started")
	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	return 0
}

func registerKeybindings(keys *hotkeys.Handler, d *daemon.Daemon, bindings []config.Keybinding, logger *slog.Logger) {
	for _, kb := range bindings {
		verb, arg, err := config.ParseCommand(kb.Command)
		if err != nil {
			logger.Warn("skipping keybinding", "keys", kb.Keys, "error", err)
			continue
		}
		if err := keys.Bind(kb.Keys, keybindingAction(d, verb, arg, logger)); err != nil {
			logger.Warn("failed to bind key", "keys", kb.Keys, "error", err)
			continue
		}
		logger.Info("keybinding registered", "keys", kb.Keys, "command", kb.Command)
	}
}

func keybindingAction(d *daemon.Daemon, verb, arg string, logger *slog.Logger) func() {
	if verb == "reload" {
		return func() {
			if err := d.Reload(); err != nil {
				logger.Error("configuration reload failed", "error", err)
			}
		}
	}

	dir, _ := tree.ParseDirection(arg)
	return func() {
		d.Do(func() {
			focused := d.Tree().Focused()
			if focused == tree.None || !d.Tree().Kind(focused).IsWindow() {
				return
			}
			d.Bus().Invoke(engine.MoveWindowCommand{Window: focused, Direction: dir})
		})
	}
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile move [--handle ID] <left|right|up|down>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move a window one step in a direction. Targets the focused window")
		fmt.Fprintln(os.Stderr, "unless --handle is given.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	handle := fs.Uint("handle", 0, "Window handle to move (default: focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "move requires exactly one direction")
		fs.Usage()
		return 2
	}

	direction := strings.ToLower(fs.Arg(0))
	client := ipc.NewClient()
	if err := client.MoveWindow(uint32(*handle), direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTree(args []string) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile tree [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the container tree of every monitor.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output the tree as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tree takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetTree()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, mon := range data.Monitors {
		printTreeNode(mon, 0)
	}
	return 0
}

func printTreeNode(node ipc.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node.Type {
	case "monitor":
		fmt.Printf("%s%s (%s)\n", indent, node.Name, node.Type)
	case "workspace":
		fmt.Printf("%sworkspace %s [%s]\n", indent, node.Name, node.Layout)
	case "split":
		fmt.Printf("%ssplit [%s] %.0f%%\n", indent, node.Layout, node.Size*100)
	default:
		marker := ""
		if node.Focused {
			marker = " *"
		}
		title := node.Title
		if title == "" {
			title = fmt.Sprintf("window %d", node.Handle)
		}
		if node.Type == "floating_window" {
			fmt.Printf("%s%s (floating)%s\n", indent, title, marker)
		} else {
			fmt.Printf("%s%s %.0f%%%s\n", indent, title, node.Size*100, marker)
		}
	}
	for _, child := range node.Children {
		printTreeNode(child, depth+1)
	}
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile monitors [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected monitors with geometry and displayed workspace.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output monitor details as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data.Monitors); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, mon := range data.Monitors {
		fmt.Printf("%s: %dx%d+%d+%d scale=%.2f workspace=%s\n",
			mon.Name, mon.Width, mon.Height, mon.X, mon.Y, mon.ScaleFactor, mon.DisplayedWorkspace)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("monitor_count:  %d\n", status.MonitorCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: treetile reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload the daemon's configuration from disk.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  treetile config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  treetile config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/treetile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/treetile/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.Default()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
