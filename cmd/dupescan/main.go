package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	dupescan "github.com/mattkeenan/dupescan/pkg"
)

const version = "0.2.0"

// Exit codes: 0 completed scan (even with zero duplicates), 1 usage or
// configuration error or unreadable root, 130 interrupted by signal.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, setupSignalHandler()))
}

func defineOptions() *ParsedOptions {
	opts := NewParsedOptions()
	opts.DefineOption("root_dir", "r", OptionTypeString, "", "Root of the tree to scan (required)")
	opts.DefineOption("chunk_size", "c", OptionTypeString, "", "Bytes read per I/O call and prefix sample size (e.g. 65536 or 64K)")
	opts.DefineOption("hash", "", OptionTypeString, "", "Hash algorithm: sha1, sha256, sha512")
	opts.DefineOption("workers", "w", OptionTypeInt, "", "Concurrent hash workers per phase")
	opts.DefineOption("format", "f", OptionTypeString, "", "Output format: human, json")
	opts.DefineOption("exclude", "x", OptionTypeString, "", "Comma-separated regex patterns to exclude")
	opts.DefineOption("skip-hardlinks", "", OptionTypeBool, "", "Do not report hard links to an already-indexed file")
	opts.DefineOption("config", "", OptionTypeString, "", "Config file path (default ~/.dupescan/config)")
	opts.DefineOption("verbose", "v", OptionTypeInt, "", "Verbose level (0-3)")
	opts.DefineOption("debug", "", OptionTypeString, "", "Comma-separated debug flags (scan,match)")
	opts.DefineOption("no-progress", "q", OptionTypeBool, "", "Suppress progress output on stderr")
	opts.DefineOption("version", "", OptionTypeBool, "", "Print version and exit")
	opts.DefineOption("help", "h", OptionTypeBool, "", "Show this help")
	return opts
}

func run(args []string, stdout, stderr io.Writer, shutdownChan <-chan struct{}) int {
	opts := defineOptions()
	if err := opts.Parse(args); err != nil {
		fmt.Fprintf(stderr, "dupescan: %v\n", err)
		opts.ShowUsage("dupescan")
		return exitError
	}

	if opts.GetBool("help") {
		opts.ShowUsage("dupescan")
		return exitOK
	}
	if opts.GetBool("version") {
		fmt.Fprintf(stdout, "dupescan %s\n", version)
		return exitOK
	}

	settings, err := resolveSettings(opts)
	if err != nil {
		fmt.Fprintf(stderr, "dupescan: %v\n", err)
		return exitError
	}

	rootDir := opts.GetString("root_dir")
	if rootDir == "" {
		fmt.Fprintf(stderr, "dupescan: --root_dir is required\n")
		opts.ShowUsage("dupescan")
		return exitError
	}

	var notify *dupescan.Notifier
	if !opts.GetBool("no-progress") {
		notify = dupescan.NewNotifier(stderr)
	}

	result, err := dupescan.FindDuplicates(rootDir, settings, notify, shutdownChan)
	interrupted := errors.Is(err, dupescan.ErrInterrupted)
	if err != nil && !interrupted {
		fmt.Fprintf(stderr, "dupescan: %v\n", err)
		return exitError
	}

	if err := dupescan.WriteResult(stdout, settings.Format, result); err != nil {
		fmt.Fprintf(stderr, "dupescan: %v\n", err)
		return exitError
	}

	if interrupted {
		fmt.Fprintf(stderr, "dupescan: scan interrupted, partial results reported\n")
		return exitInterrupted
	}
	return exitOK
}

// resolveSettings layers config file, environment, and flags, then
// validates the outcome before any traversal starts.
func resolveSettings(opts *ParsedOptions) (*dupescan.Settings, error) {
	configPath := opts.GetString("config")
	if configPath == "" {
		configPath = dupescan.DefaultConfigPath()
	}

	cfg, err := dupescan.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	settings, err := dupescan.ResolveSettings(cfg)
	if err != nil {
		return nil, err
	}

	if opts.IsSet("hash") {
		settings.HashName = opts.GetString("hash")
	}
	if opts.IsSet("chunk_size") {
		chunkSize, err := dupescan.ParseHumanSize(opts.GetString("chunk_size"))
		if err != nil {
			return nil, fmt.Errorf("invalid --chunk_size value %q: %w", opts.GetString("chunk_size"), err)
		}
		settings.ChunkSize = chunkSize
	}
	if opts.IsSet("workers") {
		settings.Workers = opts.GetInt("workers")
	}
	if opts.IsSet("format") {
		settings.Format = opts.GetString("format")
	}
	if opts.IsSet("exclude") {
		settings.Exclude = splitFlagList(opts.GetString("exclude"))
	}
	if opts.IsSet("skip-hardlinks") {
		settings.SkipHardLinks = opts.GetBool("skip-hardlinks")
	}
	if opts.IsSet("verbose") {
		dupescan.SetVerboseLevel(opts.GetInt("verbose"))
	}
	if opts.IsSet("debug") {
		dupescan.SetDebugFlags(opts.GetString("debug"))
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func splitFlagList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
