// Command r32asm assembles a single source file into 32-bit machine
// words, or runs the optional assemble-as-a-service HTTP mode. It is the
// driver of spec.md §4.F: it wires the lexer, parser, checker, resolver
// and encoder together and performs all file/network I/O, grounded on the
// teacher's cmd/run68-equivalent flag.Parse()/flag.NArg() driver shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qyon/r32asm/internal/apiserver"
	"github.com/qyon/r32asm/internal/checker"
	"github.com/qyon/r32asm/internal/config"
	"github.com/qyon/r32asm/internal/encoder"
	"github.com/qyon/r32asm/internal/inspect"
	"github.com/qyon/r32asm/internal/lexer"
	"github.com/qyon/r32asm/internal/lint"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/resolver"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "Path to an alternate TOML config file")
		verbose    = flag.Bool("verbose", false, "Emit resolver/lint progress to stderr")
		lintFlag   = flag.Bool("lint", false, "Run the unused-label linter before assembling")
		inspectF   = flag.Bool("inspect", false, "Open the interactive address-map browser after a successful assembly")
		serveAddr  = flag.String("serve", "", "Start the HTTP assemble-as-a-service mode on this address instead of reading a file")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Diagnostics.Verbose = true
	}
	if *lintFlag {
		cfg.Lint.Enabled = true
	}

	if *serveAddr != "" {
		runServer(*serveAddr, cfg)
		return
	}

	if flag.NArg() != 1 {
		fmt.Printf("[usage:] %s path/to/assembly\n", os.Args[0])
		os.Exit(1)
	}

	if err := run(flag.Arg(0), cfg, *inspectF); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return config.LoadFrom(path)
}

func run(path string, cfg *config.Config, openInspector bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if cfg.Diagnostics.Verbose {
		log.Printf("r32asm: assembling %s", path)
	}

	prog, err := parser.New(lexer.New(string(source))).Parse()
	if err != nil {
		return err
	}

	if cfg.Lint.Enabled {
		for _, issue := range lint.Lint(prog, lint.Options{WarnUnusedLabels: cfg.Lint.WarnUnusedLabels}) {
			fmt.Fprintln(os.Stderr, issue)
		}
	}

	if err := checker.Check(prog); err != nil {
		return err
	}

	if cfg.Diagnostics.Verbose {
		log.Printf("r32asm: resolving %d instructions", len(prog.Instructions))
	}

	result, err := resolver.Resolve(prog)
	if err != nil {
		return err
	}

	words := encoder.Encode(result.Instructions)

	if openInspector {
		if err := inspect.Show(inspect.Rows(prog, result.Addresses, words)); err != nil {
			return err
		}
	}

	for _, word := range words {
		fmt.Printf("%08x\n", word)
	}
	return nil
}

func runServer(addr string, cfg *config.Config) {
	if addr == "" {
		addr = cfg.Server.DefaultAddr
	}
	srv := apiserver.NewServer(addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		log.Fatalf("r32asm: server error: %v", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("r32asm: shutdown error: %v", err)
		}
	}
}
