package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/EzhovAndrew/zulu/api"
	"github.com/EzhovAndrew/zulu/internal/configuration"
	"github.com/EzhovAndrew/zulu/internal/logging"
)

const usage = `zulu - talk to Zebra label printers over the network

Usage:
  zulu [global flags] <command> [arguments]

Commands:
  get <key>                                   Get a configuration value by key
  set <key> <value>                           Set a configuration value by key
  do <action> [value]                         Perform an action by name
  upload file [--loc r|e|b] <file> <dest>     Upload a file to the printer
  upload ssl [--port N] [--no-reset] <ca> <cert> <key>
                                              Upload ssl certs and enable https
  shell                                       Interactive session

Global flags:
`

var ErrUsbNotSupported = errors.New("usb connection type is not supported yet")

// verbosityFlag counts -v; -vv and -vvv are registered as separate flags with larger steps.
type verbosityFlag struct {
	count *int
	step  int
}

func (v verbosityFlag) String() string {
	if v.count == nil {
		return "0"
	}
	return strconv.Itoa(*v.count)
}

func (v verbosityFlag) Set(s string) error {
	enabled, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if enabled {
		*v.count += v.step
	}
	return nil
}

func (v verbosityFlag) IsBoolFlag() bool { return true }

// timeoutFlag accepts whole seconds ("5") or a Go duration ("1500ms").
type timeoutFlag struct {
	value *time.Duration
}

func (t timeoutFlag) String() string {
	if t.value == nil {
		return ""
	}
	return t.value.String()
}

func (t timeoutFlag) Set(s string) error {
	if seconds, err := strconv.Atoi(s); err == nil {
		*t.value = time.Duration(seconds) * time.Second
	} else {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid timeout %q", s)
		}
		*t.value = d
	}
	if *t.value <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

type Options struct {
	ConfigPath string
	Address    string
	Timeout    time.Duration
	Usb        bool
	Verbosity  int
	Args       []string

	addressSet bool
	timeoutSet bool
}

func parseOptions(args []string, output io.Writer) (*Options, error) {
	opts := &Options{}
	fs := flag.NewFlagSet("zulu", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.ConfigPath, "config", os.Getenv("CONFIG_FILEPATH"), "Path to a YAML or TOML config file")
	fs.StringVar(&opts.Address, "addr", "192.168.0.40:9100", "The address of the printer")
	fs.BoolVar(&opts.Usb, "usb", false, "Connect to printer using usb. NOT SUPPORTED currently")
	fs.Var(timeoutFlag{value: &opts.Timeout}, "timeout", "Timeout for network operations, seconds or a duration")
	fs.Var(timeoutFlag{value: &opts.Timeout}, "t", "Shorthand for --timeout")
	fs.Var(verbosityFlag{count: &opts.Verbosity, step: 1}, "v", "Increase verbosity (-v, -vv, -vvv)")
	fs.Var(verbosityFlag{count: &opts.Verbosity, step: 2}, "vv", "Verbosity level 2")
	fs.Var(verbosityFlag{count: &opts.Verbosity, step: 3}, "vvv", "Verbosity level 3")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			opts.addressSet = true
		case "timeout", "t":
			opts.timeoutSet = true
		}
	})

	opts.Args = fs.Args()
	return opts, nil
}

// buildConfig layers the config file (if any) and explicit flags over the defaults.
func buildConfig(opts *Options) (*configuration.Config, error) {
	cfg := configuration.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := configuration.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.addressSet || opts.ConfigPath == "" {
		cfg.Printer.Address = opts.Address
	}
	if opts.timeoutSet {
		cfg.Printer.ConnectionTimeout = opts.Timeout
		cfg.Printer.ReadTimeout = opts.Timeout
		cfg.Printer.WriteTimeout = opts.Timeout
	}
	if opts.Verbosity > 0 || opts.ConfigPath == "" {
		cfg.Logging.Level = logging.LevelForVerbosity(opts.Verbosity)
	}
	if opts.ConfigPath == "" {
		cfg.Logging.Output = "stderr"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func clientConfig(cfg *configuration.PrinterConfig) *api.Config {
	return api.DefaultConfig().
		WithAddress(cfg.Address).
		WithConnectionTimeout(cfg.ConnectionTimeout).
		WithReadTimeout(cfg.ReadTimeout).
		WithWriteTimeout(cfg.WriteTimeout).
		WithReadBufferSize(cfg.ReadBufferSize).
		WithRetryAttempts(cfg.RetryAttempts)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if len(opts.Args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	if opts.Usb {
		fmt.Fprintf(stderr, "Error: %v\n", ErrUsbNotSupported)
		return 1
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logging.Init(&cfg.Logging)
	defer logging.Sync()

	client, err := api.NewClient(clientConfig(&cfg.Printer))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close() //nolint:errcheck

	if err := dispatch(ctx, client, opts.Args, stdin, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, client *api.Client, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "get":
		return runGet(ctx, client, rest, stdout)
	case "set":
		return runSet(ctx, client, rest)
	case "do":
		return runDo(ctx, client, rest)
	case "upload":
		return runUpload(ctx, client, rest, stderr)
	case "shell":
		return runShell(ctx, client, stdin, stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runGet(ctx context.Context, client *api.Client, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("get requires exactly one argument: <key>")
	}
	response, err := client.GetBytes(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading command response: %w", err)
	}
	if len(response) > 0 {
		fmt.Fprintln(stdout, api.DisplayResponse(response))
	}
	return nil
}

func runSet(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return errors.New("set requires exactly two arguments: <key> <value>")
	}
	if err := client.Set(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("writing set command: %w", err)
	}
	return nil
}

func runDo(ctx context.Context, client *api.Client, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("do requires an action and an optional value: <action> [value]")
	}
	value := ""
	if len(args) == 2 {
		value = args[1]
	}
	if err := client.Do(ctx, args[0], value); err != nil {
		return fmt.Errorf("writing do command: %w", err)
	}
	return nil
}

func runUpload(ctx context.Context, client *api.Client, args []string, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("upload requires a subcommand: file or ssl")
	}
	switch strings.ToLower(args[0]) {
	case "file":
		return runUploadFile(ctx, client, args[1:], stderr)
	case "ssl":
		return runUploadSSL(ctx, client, args[1:], stderr)
	default:
		return fmt.Errorf("unknown upload subcommand %q", args[0])
	}
}

func runUploadFile(ctx context.Context, client *api.Client, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("upload file", flag.ContinueOnError)
	fs.SetOutput(stderr)
	loc := fs.String("loc", "e", "Device location to write the file to: r ram, e flash, b PCMCIA")
	fs.StringVar(loc, "l", "e", "Shorthand for --loc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("upload file requires <file> <dest>")
	}

	location, err := api.ParseStorageLocation(*loc)
	if err != nil {
		return err
	}
	if err := client.UploadFile(ctx, location, fs.Arg(0), fs.Arg(1)); err != nil {
		return fmt.Errorf("writing file to printer: %w", err)
	}
	return nil
}

func runUploadSSL(ctx context.Context, client *api.Client, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("upload ssl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", api.DefaultHTTPSPort, "The port to set https to listen to on the printer")
	fs.IntVar(port, "p", api.DefaultHTTPSPort, "Shorthand for --port")
	noReset := fs.Bool("no-reset", false, "Do NOT reset the printer after the operation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return errors.New("upload ssl requires <ca> <cert> <key>")
	}

	logging.Info("uploading ssl certs")
	return client.UploadSSL(ctx, api.SSLOptions{
		Bundle: api.SSLBundle{
			CAPath:   fs.Arg(0),
			CertPath: fs.Arg(1),
			KeyPath:  fs.Arg(2),
		},
		Port:  *port,
		Reset: !*noReset,
	})
}
