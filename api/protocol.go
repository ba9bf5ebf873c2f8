package api

import (
	"fmt"
)

// SGD (Set/Get/Do) encoding for zulu.
// Keys and values are inserted verbatim between double quotes. Embedded
// quote characters are not escaped: the printer firmware has no escape
// syntax, so callers must not pass them.

// LineTerminator ends every SGD command and every upload directive.
const LineTerminator = "\r\n"

const sgdPrefix = "! U1"

// Command is one of GetCommand, SetCommand, DoCommand or UploadDirective.
type Command interface {
	command()
}

// GetCommand reads a printer variable.
type GetCommand struct {
	Key string
}

// SetCommand writes a printer variable.
type SetCommand struct {
	Key   string
	Value string
}

// DoCommand invokes a named printer action. An empty Value is sent as "".
type DoCommand struct {
	Key   string
	Value string
}

func (GetCommand) command()      {}
func (SetCommand) command()      {}
func (DoCommand) command()       {}
func (UploadDirective) command() {}

// Encode turns a command into the bytes the printer expects.
// The only failure is a nil or foreign Command.
func Encode(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case GetCommand:
		return EncodeGet(c), nil
	case SetCommand:
		return EncodeSet(c), nil
	case DoCommand:
		return EncodeDo(c), nil
	case UploadDirective:
		return EncodeUpload(c), nil
	case *GetCommand:
		if c != nil {
			return EncodeGet(*c), nil
		}
	case *SetCommand:
		if c != nil {
			return EncodeSet(*c), nil
		}
	case *DoCommand:
		if c != nil {
			return EncodeDo(*c), nil
		}
	case *UploadDirective:
		if c != nil {
			return EncodeUpload(*c), nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

// ExpectsResponse reports whether the printer answers the command.
func ExpectsResponse(cmd Command) bool {
	switch cmd.(type) {
	case GetCommand, *GetCommand:
		return true
	default:
		return false
	}
}

// EncodeGet encodes `! U1 getvar "<key>"`
func EncodeGet(c GetCommand) []byte {
	return []byte(sgdPrefix + ` getvar "` + c.Key + `"` + LineTerminator)
}

// EncodeSet encodes `! U1 setvar "<key>" "<value>"`
func EncodeSet(c SetCommand) []byte {
	return []byte(sgdPrefix + ` setvar "` + c.Key + `" "` + c.Value + `"` + LineTerminator)
}

// EncodeDo encodes `! U1 do "<key>" "<value>"`
func EncodeDo(c DoCommand) []byte {
	return []byte(sgdPrefix + ` do "` + c.Key + `" "` + c.Value + `"` + LineTerminator)
}
