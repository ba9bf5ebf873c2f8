package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/EzhovAndrew/zulu/api"
)

type Command struct {
	Name        string
	Description string
	Usage       string
	Example     string
}

var commands = map[string]Command{
	"GET": {
		Name:        "GET",
		Description: "Get a configuration value by key",
		Usage:       "GET <key>",
		Example:     "GET device.friendly_name",
	},
	"SET": {
		Name:        "SET",
		Description: "Set a configuration value by key",
		Usage:       "SET <key> <value>",
		Example:     "SET ip.https.enable on",
	},
	"DO": {
		Name:        "DO",
		Description: "Perform an action by name",
		Usage:       "DO <action> [value]",
		Example:     "DO device.reset",
	},
	"UPLOAD": {
		Name:        "UPLOAD",
		Description: "Upload a file to flash",
		Usage:       "UPLOAD <file> <dest> [r|e|b]",
		Example:     "UPLOAD ./ca.pem HTTPS_CA.NRD",
	},
	"HELP": {
		Name:        "HELP",
		Description: "Show available commands",
		Usage:       "HELP [command]",
		Example:     "HELP GET",
	},
	"EXIT": {
		Name:        "EXIT",
		Description: "Exit the shell",
		Usage:       "EXIT",
		Example:     "EXIT",
	},
	"QUIT": {
		Name:        "QUIT",
		Description: "Exit the shell",
		Usage:       "QUIT",
		Example:     "QUIT",
	},
}

// runShell reads commands until EOF or EXIT, sending them all over one session.
func runShell(ctx context.Context, client *api.Client, stdin io.Reader, stdout io.Writer) error {
	fmt.Fprintln(stdout, "zulu shell")
	fmt.Fprintln(stdout, "Type 'HELP' for available commands or 'EXIT'/'QUIT' to quit")
	fmt.Fprintln(stdout)

	completer := readline.NewPrefixCompleter(createCompleterItems()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "zulu> ",
		HistoryFile:     "/tmp/zulu-history.tmp",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           io.NopCloser(stdin),
		Stdout:          stdout,
	})
	if err != nil {
		fmt.Fprintf(stdout, "Error initializing readline: %v\n", err)
		fallbackShell(ctx, client, stdin, stdout)
		return nil
	}
	defer rl.Close() //nolint:errcheck

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if shouldExit := processCommand(ctx, line, client, stdout); shouldExit {
			break
		}
	}
	return nil
}

func createCompleterItems() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, name := range sortedCommandNames() {
		items = append(items, readline.PcItem(name))
	}
	return items
}

func sortedCommandNames() []string {
	var cmdNames []string
	for name := range commands {
		cmdNames = append(cmdNames, name)
	}
	sort.Strings(cmdNames)
	return cmdNames
}

func processCommand(ctx context.Context, input string, client *api.Client, out io.Writer) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	cmd := strings.ToUpper(parts[0])
	args := parts[1:]

	switch cmd {
	case "HELP":
		handleHelp(args, out)
	case "EXIT", "QUIT":
		fmt.Fprintln(out, "Goodbye!")
		return true
	case "GET":
		handleGet(ctx, args, client, out)
	case "SET":
		handleSet(ctx, args, client, out)
	case "DO":
		handleDo(ctx, args, client, out)
	case "UPLOAD":
		handleUpload(ctx, args, client, out)
	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(out, "Type 'HELP' for available commands")
	}

	return false
}

func handleHelp(args []string, out io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(out, "Available commands:")
		fmt.Fprintln(out)
		for _, name := range sortedCommandNames() {
			cmd := commands[name]
			fmt.Fprintf(out, "  %-8s %s\n", cmd.Name, cmd.Description)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use 'HELP <command>' for detailed information about a specific command")
		return
	}

	cmdName := strings.ToUpper(args[0])
	if cmd, exists := commands[cmdName]; exists {
		fmt.Fprintf(out, "Command: %s\n", cmd.Name)
		fmt.Fprintf(out, "Description: %s\n", cmd.Description)
		fmt.Fprintf(out, "Usage: %s\n", cmd.Usage)
		fmt.Fprintf(out, "Example: %s\n", cmd.Example)
	} else {
		fmt.Fprintf(out, "Unknown command: %s\n", cmdName)
		fmt.Fprintln(out, "Type 'HELP' to see all available commands")
	}
}

func handleGet(ctx context.Context, args []string, client *api.Client, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Error: GET requires exactly one argument")
		fmt.Fprintln(out, "Usage: GET <key>")
		return
	}

	response, err := client.GetBytes(ctx, args[0])
	if err != nil {
		fmt.Fprintf(out, "Error sending GET command: %v\n", err)
		return
	}
	if len(response) > 0 {
		fmt.Fprintln(out, api.DisplayResponse(response))
	}
}

// handleSet treats everything after the key as the value so values may contain spaces.
func handleSet(ctx context.Context, args []string, client *api.Client, out io.Writer) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Error: SET requires a key and a value")
		fmt.Fprintln(out, "Usage: SET <key> <value>")
		return
	}

	if err := client.Set(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(out, "Error sending SET command: %v\n", err)
		return
	}
	fmt.Fprintln(out, "OK")
}

func handleDo(ctx context.Context, args []string, client *api.Client, out io.Writer) {
	if len(args) < 1 {
		fmt.Fprintln(out, "Error: DO requires an action")
		fmt.Fprintln(out, "Usage: DO <action> [value]")
		return
	}

	if err := client.Do(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(out, "Error sending DO command: %v\n", err)
		return
	}
	fmt.Fprintln(out, "OK")
}

func handleUpload(ctx context.Context, args []string, client *api.Client, out io.Writer) {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(out, "Error: UPLOAD requires a file and a destination")
		fmt.Fprintln(out, "Usage: UPLOAD <file> <dest> [r|e|b]")
		return
	}

	location := api.DefaultStorageLocation
	if len(args) == 3 {
		var err error
		if location, err = api.ParseStorageLocation(args[2]); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
	}

	if err := client.UploadFile(ctx, location, args[0], args[1]); err != nil {
		fmt.Fprintf(out, "Error uploading file: %v\n", err)
		return
	}
	fmt.Fprintln(out, "OK")
}

// Fallback shell without readline (in case readline fails to initialize)
func fallbackShell(ctx context.Context, client *api.Client, stdin io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Using fallback mode (no autocomplete)")
	scanner := bufio.NewScanner(stdin)

	for {
		fmt.Fprint(out, "zulu> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if shouldExit := processCommand(ctx, line, client, out); shouldExit {
			break
		}
	}
}
