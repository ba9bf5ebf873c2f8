package simulator

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type CommandKind int

const (
	InvalidCommandKind CommandKind = iota
	GetCommandKind
	SetCommandKind
	DoCommandKind
	UploadCommandKind
)

const (
	sgdPrefix       = "! U1 "
	uploadPrefix    = "~DY"
	maxHeaderLength = 1024
	maxUploadSize   = 64 << 20
	headerFields    = 5
)

var (
	ErrUnknownCommand         = errors.New("unknown command")
	ErrInvalidArgumentsNumber = errors.New("invalid arguments number")
	ErrMalformedUpload        = errors.New("malformed upload directive")
)

// Command is one request decoded from the printer's input stream.
type Command struct {
	Kind  CommandKind
	Key   string
	Value string

	// Upload fields.
	Location  string
	Name      string
	Format    string
	Extension string
	Data      []byte

	// Err is set for InvalidCommandKind.
	Err error
}

// Parser splits an unframed byte stream into commands. It keeps whatever
// trails the last complete command until more data arrives.
type Parser struct {
	buf []byte
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed appends data and returns every command completed by it.
func (p *Parser) Feed(data []byte) []Command {
	p.buf = append(p.buf, data...)

	var commands []Command
	for {
		p.buf = bytes.TrimLeft(p.buf, " \t\r\n")
		if len(p.buf) == 0 {
			break
		}

		cmd, consumed := p.next()
		if consumed == 0 {
			break
		}
		p.buf = p.buf[consumed:]
		commands = append(commands, cmd)
	}

	if len(p.buf) == 0 {
		p.buf = nil
	}
	return commands
}

// Pending is the number of buffered bytes not yet forming a command.
func (p *Parser) Pending() int {
	return len(p.buf)
}

// next decodes one command from the head of the buffer. consumed is 0 when
// more input is needed.
func (p *Parser) next() (Command, int) {
	switch {
	case bytes.HasPrefix(p.buf, []byte(uploadPrefix)):
		return p.nextUpload()
	case bytes.HasPrefix(p.buf, []byte(sgdPrefix)):
		return p.nextLine(parseSGD)
	case isPrefixOf(p.buf, uploadPrefix) || isPrefixOf(p.buf, sgdPrefix):
		return Command{}, 0
	default:
		return p.nextLine(func(line string) Command {
			return invalid(fmt.Errorf("%w: %q", ErrUnknownCommand, line))
		})
	}
}

func (p *Parser) nextLine(parse func(line string) Command) (Command, int) {
	end := bytes.IndexByte(p.buf, '\n')
	if end < 0 {
		if len(p.buf) > maxHeaderLength {
			return invalid(fmt.Errorf("%w: unterminated line", ErrUnknownCommand)), len(p.buf)
		}
		return Command{}, 0
	}
	line := strings.TrimRight(string(p.buf[:end]), "\r")
	return parse(line), end + 1
}

func (p *Parser) nextUpload() (Command, int) {
	headerEnd, fields, ok := splitUploadHeader(p.buf)
	if !ok {
		if len(p.buf) > maxHeaderLength {
			return p.skipLine(fmt.Errorf("%w: header too long", ErrMalformedUpload))
		}
		return Command{}, 0
	}

	location, name, found := strings.Cut(strings.TrimPrefix(fields[0], uploadPrefix), ":")
	if !found || location == "" || name == "" {
		return p.skipLine(fmt.Errorf("%w: bad object name %q", ErrMalformedUpload, fields[0]))
	}

	size, err := strconv.Atoi(fields[3])
	if err != nil || size < 0 || size > maxUploadSize {
		return p.skipLine(fmt.Errorf("%w: bad size %q", ErrMalformedUpload, fields[3]))
	}

	if len(p.buf) < headerEnd+size {
		return Command{}, 0
	}

	data := make([]byte, size)
	copy(data, p.buf[headerEnd:headerEnd+size])
	return Command{
		Kind:      UploadCommandKind,
		Location:  location,
		Name:      name,
		Format:    fields[1],
		Extension: fields[2],
		Data:      data,
	}, headerEnd + size
}

func (p *Parser) skipLine(err error) (Command, int) {
	end := bytes.IndexByte(p.buf, '\n')
	if end < 0 {
		return invalid(err), len(p.buf)
	}
	return invalid(err), end + 1
}

// splitUploadHeader finds `~DY<loc>:<name>,<fmt>,<ext>,<size>,<rows>,` and
// returns the offset just past it.
func splitUploadHeader(buf []byte) (int, []string, bool) {
	limit := min(len(buf), maxHeaderLength)
	commas := 0
	for i := 0; i < limit; i++ {
		if buf[i] != ',' {
			continue
		}
		commas++
		if commas == headerFields {
			fields := strings.Split(string(buf[:i]), ",")
			return i + 1, fields, true
		}
	}
	return 0, nil, false
}

func parseSGD(line string) Command {
	rest := strings.TrimPrefix(line, sgdPrefix)
	verb, args, _ := strings.Cut(rest, " ")
	values := quotedValues(args)

	switch verb {
	case "getvar":
		if len(values) != 1 {
			return invalid(fmt.Errorf("%w: getvar takes 1, got %d", ErrInvalidArgumentsNumber, len(values)))
		}
		return Command{Kind: GetCommandKind, Key: values[0]}
	case "setvar":
		if len(values) != 2 {
			return invalid(fmt.Errorf("%w: setvar takes 2, got %d", ErrInvalidArgumentsNumber, len(values)))
		}
		return Command{Kind: SetCommandKind, Key: values[0], Value: values[1]}
	case "do":
		if len(values) < 1 || len(values) > 2 {
			return invalid(fmt.Errorf("%w: do takes 1 or 2, got %d", ErrInvalidArgumentsNumber, len(values)))
		}
		cmd := Command{Kind: DoCommandKind, Key: values[0]}
		if len(values) == 2 {
			cmd.Value = values[1]
		}
		return cmd
	default:
		return invalid(fmt.Errorf("%w: %q", ErrUnknownCommand, verb))
	}
}

// quotedValues returns the contents of each "..." pair in s. Quotes have no
// escape syntax on the wire.
func quotedValues(s string) []string {
	var values []string
	for {
		start := strings.IndexByte(s, '"')
		if start < 0 {
			return values
		}
		end := strings.IndexByte(s[start+1:], '"')
		if end < 0 {
			return values
		}
		values = append(values, s[start+1:start+1+end])
		s = s[start+end+2:]
	}
}

func isPrefixOf(buf []byte, prefix string) bool {
	return len(buf) < len(prefix) && strings.HasPrefix(prefix, string(buf))
}

func invalid(err error) Command {
	return Command{Kind: InvalidCommandKind, Err: err}
}
