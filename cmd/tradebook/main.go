package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tradebook/internal/app"
	"tradebook/internal/booking"
	"tradebook/internal/config"
	"tradebook/internal/envelope"
	"tradebook/internal/trade"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "book":
		return runBook(ctx, args[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "verify":
		return runVerify(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: tradebook <command> [flags]

commands:
  book   [flags] <trade.json>...   book trade records into messages
  serve  [flags]                   run the HTTP intake and/or inbox watcher
  verify <message.json>...         recheck message checksums`)
}

func defaultConfigPath() string {
	return os.Getenv("TRADEBOOK_CONFIG")
}

// bookFlagKeys maps book flags onto config keys.
var bookFlagKeys = map[string]string{
	"out":     "output.dir",
	"mapping": "mapping.path",
	"mode":    "booking.classification_mode",
	"sender":  "booking.sender",
	"target":  "booking.target",
	"workers": "booking.workers",
}

func runBook(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("book", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.StringP("config", "c", defaultConfigPath(), "config file (yaml)")
	fs.StringP("out", "o", "", "output directory")
	outputFile := fs.String("output-file", "", "output file name; -<unit> is added when missing")
	fs.String("mapping", "", "mapping table file (yaml)")
	fs.String("mode", "", "classification mode: pricing|pair")
	fs.String("sender", "", "default senderCompID")
	fs.String("target", "", "default targetCompID")
	fs.Int("workers", 0, "parallel units per record")
	verbose := fs.BoolP("verbose", "v", false, "debug logging and message dump")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "book: at least one input file is required")
		return exitUsage
	}

	cfg, err := config.Load(*cfgPath, config.WithFlags(fs, bookFlagKeys))
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFail
	}
	if *outputFile != "" {
		cfg.Output.Enabled = true
		cfg.Output.FilePattern = unitPattern(*outputFile)
	}
	if *verbose {
		cfg.App.LogLevel = "debug"
		cfg.App.MessageLog = "-"
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "init: %v\n", err)
		return exitFail
	}
	defer a.Close()

	code := exitOK
	for _, path := range fs.Args() {
		batch, err := a.BookFile(ctx, path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, describe(err))
			code = exitFail
			continue
		}
		if !report(stdout, stderr, path, batch) {
			code = exitFail
		}
	}
	return code
}

// report prints one line per unit and returns false when any unit failed.
func report(stdout, stderr io.Writer, path string, batch *booking.Batch) bool {
	ok := true
	for _, res := range batch.Results {
		if res.Err != nil {
			fmt.Fprintf(stderr, "%s: trade %s unit %d: %v\n", path, batch.TradeID, res.Number(), describe(res.Err))
			ok = false
			continue
		}
		for _, d := range res.Delivery {
			fmt.Fprintf(stderr, "%s: trade %s unit %d: %v\n", path, batch.TradeID, res.Number(), d)
			ok = false
		}
		fmt.Fprintf(stdout, "%s: trade %s unit %d booked (%s) checksum=%s\n",
			path, batch.TradeID, res.Number(), batch.Class, res.Message.Checksum())
	}
	return ok
}

// describe prefixes the error with its category.
func describe(err error) string {
	switch {
	case errors.Is(err, trade.ErrStructural):
		return "invalid record: " + err.Error()
	case errors.Is(err, trade.ErrSemantic):
		return "invalid value: " + err.Error()
	case errors.Is(err, trade.ErrUnsupported):
		return "unsupported: " + err.Error()
	case errors.Is(err, trade.ErrIO):
		return "io: " + err.Error()
	default:
		return err.Error()
	}
}

// unitPattern turns a single output file name into a per-unit pattern.
func unitPattern(name string) string {
	if strings.Contains(name, "{unit}") {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-{unit}" + ext
}

func runServe(ctx context.Context, args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.StringP("config", "c", defaultConfigPath(), "config file (yaml)")
	fs.String("http-addr", "", "http listen address (enables http)")
	fs.String("inbox", "", "inbox directory (enables the watcher)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, err := config.Load(*cfgPath, config.WithFlags(fs, map[string]string{
		"http-addr": "http.addr",
		"inbox":     "inbox.dir",
	}))
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFail
	}
	if fs.Changed("http-addr") {
		cfg.HTTP.Enabled = true
	}
	if fs.Changed("inbox") {
		cfg.Inbox.Enabled = true
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "init: %v\n", err)
		return exitFail
	}
	defer a.Close()
	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitFail
	}
	return exitOK
}

func runVerify(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "verify: at least one message file is required")
		return exitUsage
	}
	return verifyFiles(afero.NewOsFs(), fs.Args(), stdout, stderr)
}

func verifyFiles(fsys afero.Fs, paths []string, stdout, stderr io.Writer) int {
	code := exitOK
	for _, path := range paths {
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			code = exitFail
			continue
		}
		msg, err := envelope.Parse(data)
		if err == nil {
			err = msg.Verify()
		}
		if err != nil {
			fmt.Fprintf(stderr, "%s: FAIL %v\n", path, err)
			code = exitFail
			continue
		}
		fmt.Fprintf(stdout, "%s: OK %s\n", path, msg.Checksum())
	}
	return code
}
