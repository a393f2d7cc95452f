package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluvm/aluvm/api"
	"github.com/aluvm/aluvm/config"
	"github.com/aluvm/aluvm/debugger"
	"github.com/aluvm/aluvm/encoder"
	"github.com/aluvm/aluvm/loader"
	"github.com/aluvm/aluvm/service"
	"github.com/aluvm/aluvm/tools"
	"github.com/aluvm/aluvm/vm"
)

// Version information, overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "aluvm",
		Short:   "AluVM — a deterministic register-based bytecode VM",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	}

	var libDir string
	var entry uint16
	var configPath string

	addCommonFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&libDir, "lib-dir", "", "directory of dependency libraries; every file in it is loaded")
		cmd.Flags().Uint16Var(&entry, "entry", 0, "entry offset into the main library")
		cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file (default: platform config dir)")
	}

	runCmd := &cobra.Command{
		Use:   "run <library>",
		Short: "execute a library to completion and print its final register state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			sess, libID, err := newSessionWithLibrary(cfg, args[0], libDir, entry)
			if err != nil {
				return err
			}
			if err := sess.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("library: %s\n", loader.FormatLibID(libID))
			fmt.Println(sess.String())
			return nil
		},
	}
	addCommonFlags(runCmd)

	var useTUI bool
	stepCmd := &cobra.Command{
		Use:   "step <library>",
		Short: "launch the interactive debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			sess, _, err := newSessionWithLibrary(cfg, args[0], libDir, entry)
			if err != nil {
				return err
			}
			dbg := debugger.NewDebugger(sess)

			if useTUI {
				return debugger.RunTUI(dbg)
			}
			fmt.Println("AluVM Debugger - Type 'help' for commands")
			return debugger.RunCLI(dbg)
		},
	}
	addCommonFlags(stepCmd)
	stepCmd.Flags().BoolVar(&useTUI, "tui", true, "use the full-screen TUI debugger instead of the line debugger")

	disasmCmd := &cobra.Command{
		Use:   "disasm <library>",
		Short: "disassemble a library's code segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := readLibraryFile(args[0])
			if err != nil {
				return err
			}
			lines, err := encoder.Disassemble(lib)
			if err != nil {
				return fmt.Errorf("disassemble: %w", err)
			}
			for _, ln := range lines {
				fmt.Println(ln.String())
			}
			return nil
		},
	}

	lintCmd := &cobra.Command{
		Use:   "lint <library>",
		Short: "statically check a library for reserved opcodes, bad jump/dependency references, and unreachable code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := readLibraryFile(args[0])
			if err != nil {
				return err
			}
			linter := tools.NewLinter(tools.DefaultLintOptions())
			issues, err := linter.Lint(lib)
			if err != nil {
				return fmt.Errorf("lint: %w", err)
			}
			for _, issue := range issues {
				fmt.Println(issue.String())
			}

			graph, err := tools.BuildDepGraph(lib)
			if err != nil {
				return fmt.Errorf("depgraph: %w", err)
			}
			for _, n := range graph.Unreferenced() {
				fmt.Printf("dep[%d] %s: declared but never referenced\n", n.Index, loader.FormatLibID(n.LibID))
			}
			for _, ref := range graph.Undeclared {
				fmt.Printf("%04x: %s references dep[%d], which is not declared\n", ref.Offset, ref.Kind, ref.DepIndex)
			}

			errCount := 0
			for _, issue := range issues {
				if issue.Level == tools.LintError {
					errCount++
				}
			}
			if errCount > 0 || len(graph.Undeclared) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	idCmd := &cobra.Command{
		Use:   "id <library>",
		Short: "compute and print a library's identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := readLibraryFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(loader.FormatLibID(lib.Id()))
			return nil
		},
	}

	var apiPort int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP/websocket introspection server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if apiPort != 0 {
				cfg.API.ListenAddr = fmt.Sprintf("127.0.0.1:%d", apiPort)
			}
			return runServer(cfg)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file (default: platform config dir)")
	serveCmd.Flags().IntVar(&apiPort, "port", 0, "listen port (overrides config's api.listen_addr)")

	rootCmd.AddCommand(runCmd, stepCmd, disasmCmd, lintCmd, idCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads path if given, otherwise the platform config file if one
// exists, falling back to config.DefaultConfig.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	if _, err := os.Stat(config.GetConfigPath()); err == nil {
		return config.Load()
	}
	return config.DefaultConfig(), nil
}

// readLibraryFile decodes a single §6 wire-format library from disk.
func readLibraryFile(path string) (*vm.Library, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- user-specified library path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lib, err := loader.DecodeLibrary(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return lib, nil
}

// newSessionWithLibrary loads the main library plus every file in libDir as
// a dependency library (file names are not interpreted; each library is
// keyed by the id computed from its content) and positions the session's
// entry point.
func newSessionWithLibrary(cfg *config.Config, path, libDir string, entry uint16) (*service.Session, vm.LibID, error) {
	lib, err := readLibraryFile(path)
	if err != nil {
		return nil, vm.LibID{}, err
	}

	sess := service.NewSession(cfg)
	sess.LoadLibrary(lib)

	if libDir != "" {
		entries, err := os.ReadDir(libDir)
		if err != nil {
			return nil, vm.LibID{}, fmt.Errorf("read lib-dir %s: %w", libDir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			depLib, err := readLibraryFile(filepath.Join(libDir, e.Name()))
			if err != nil {
				return nil, vm.LibID{}, fmt.Errorf("loading dependency %s: %w", e.Name(), err)
			}
			sess.LoadLibrary(depLib)
		}
	}

	libID := lib.Id()
	if err := sess.LoadEntry(vm.LibrarySite{Lib: libID, Offset: entry}); err != nil {
		return nil, vm.LibID{}, fmt.Errorf("load entry: %w", err)
	}
	return sess, libID, nil
}

// runServer starts the API server and blocks until it receives a shutdown
// signal, mirroring the teacher's process-monitor-backed graceful shutdown.
func runServer(cfg *config.Config) error {
	server := api.NewServer(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
			}
			fmt.Println("API server stopped")
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()
	defer monitor.Stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		performShutdown()
	case err := <-errChan:
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}
