package simulator

import (
	"context"
	"maps"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/EzhovAndrew/zulu/internal/logging"
	"github.com/EzhovAndrew/zulu/internal/network"
	"github.com/EzhovAndrew/zulu/internal/utils"
)

const (
	// UnknownValue is what a printer answers for a variable it does not have.
	UnknownValue = "?"

	resetAction = "device.reset"
)

// StoredFile is an object written by a ~DY directive.
type StoredFile struct {
	Location  string
	Name      string
	Format    string
	Extension string
	Data      []byte
}

// Printer is an in-memory label printer answering SGD and ~DY requests.
// It is shared by all connections.
type Printer struct {
	mutex     sync.RWMutex
	variables map[string]string
	files     map[string]StoredFile
	resets    int
}

func NewPrinter(variables map[string]string) *Printer {
	vars := make(map[string]string, len(variables))
	maps.Copy(vars, variables)
	return &Printer{
		variables: vars,
		files:     make(map[string]StoredFile),
	}
}

// NewHandler returns a connection handler with its own stream parser.
func (p *Printer) NewHandler() network.TCPHandler {
	parser := NewParser()
	return func(ctx context.Context, data []byte) []byte {
		var response []byte
		for _, cmd := range parser.Feed(data) {
			response = append(response, p.Apply(ctx, cmd)...)
		}
		return response
	}
}

// Apply executes one command and returns the printer's reply, which is
// empty for everything except getvar.
func (p *Printer) Apply(ctx context.Context, cmd Command) []byte {
	connectionID, _ := utils.ConnectionIDFromContext(ctx)

	switch cmd.Kind {
	case GetCommandKind:
		value, ok := p.Variable(cmd.Key)
		if !ok {
			value = UnknownValue
		}
		logging.Info("getvar", zap.String("connection_id", connectionID), zap.String("key", cmd.Key))
		return []byte(`"` + value + `"`)
	case SetCommandKind:
		p.mutex.Lock()
		p.variables[cmd.Key] = cmd.Value
		p.mutex.Unlock()
		logging.Info("setvar", zap.String("connection_id", connectionID),
			zap.String("key", cmd.Key), zap.String("value", cmd.Value))
	case DoCommandKind:
		if cmd.Key == resetAction {
			p.mutex.Lock()
			p.resets++
			p.mutex.Unlock()
		}
		logging.Info("do", zap.String("connection_id", connectionID),
			zap.String("action", cmd.Key), zap.String("value", cmd.Value))
	case UploadCommandKind:
		file := StoredFile{
			Location:  cmd.Location,
			Name:      cmd.Name,
			Format:    cmd.Format,
			Extension: cmd.Extension,
			Data:      cmd.Data,
		}
		p.mutex.Lock()
		p.files[fileKey(cmd.Location, cmd.Name)] = file
		p.mutex.Unlock()
		logging.Info("stored file", zap.String("connection_id", connectionID),
			zap.String("location", cmd.Location), zap.String("name", cmd.Name),
			zap.Int("size", len(cmd.Data)))
	default:
		logging.Warn("ignoring invalid command", zap.String("connection_id", connectionID), zap.Error(cmd.Err))
	}
	return nil
}

func (p *Printer) Variable(key string) (string, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	value, ok := p.variables[key]
	return value, ok
}

// File returns the object stored at location:name.
func (p *Printer) File(location, name string) (StoredFile, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	file, ok := p.files[fileKey(location, name)]
	return file, ok
}

// FileNames lists stored objects as sorted location:name keys.
func (p *Printer) FileNames() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Printer) Resets() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.resets
}

func fileKey(location, name string) string {
	return location + ":" + name
}
