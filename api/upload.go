package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StorageLocation is a printer memory area addressable by ~DY.
type StorageLocation byte

const (
	RAM    StorageLocation = 'R'
	Flash  StorageLocation = 'E'
	PCMCIA StorageLocation = 'B'
)

// DefaultStorageLocation is where files land when no location is given.
const DefaultStorageLocation = Flash

const (
	// uploadFormatBinary is the only ~DY data format implemented.
	// The printer also accepts C (AR compressed) and P (hex PNG).
	uploadFormatBinary = "B"

	// uploadRowBytes only applies to image payloads.
	uploadRowBytes = ""
)

// Destination names of the https material on the printer.
const (
	SSLCADestination   = "HTTPS_CA.NRD"
	SSLCertDestination = "HTTPS_CERT.NRD"
	SSLKeyDestination  = "HTTPS_KEY.NRD"
)

func (l StorageLocation) String() string {
	return string(rune(l))
}

func (l StorageLocation) Valid() bool {
	switch l {
	case RAM, Flash, PCMCIA:
		return true
	default:
		return false
	}
}

// ParseStorageLocation accepts a wire code (r, e, b) or a name (ram, flash, pcmcia).
func ParseStorageLocation(s string) (StorageLocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "ram":
		return RAM, nil
	case "e", "flash":
		return Flash, nil
	case "b", "pcmcia":
		return PCMCIA, nil
	default:
		return 0, &InvalidArgumentError{Message: fmt.Sprintf("unknown storage location %q, want r, e or b", s)}
	}
}

// UploadDirective stores SourceBytes under DestinationName on the printer.
type UploadDirective struct {
	Location        StorageLocation
	SourceBytes     []byte
	DestinationName string
}

// ReadUploadDirective reads the whole file at path into a directive.
// Nothing is sent when the read fails.
func ReadUploadDirective(location StorageLocation, path, destination string) (UploadDirective, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadDirective{}, &EncodingInputError{Path: path, Err: err}
	}
	return UploadDirective{
		Location:        location,
		SourceBytes:     data,
		DestinationName: destination,
	}, nil
}

// Extension is the part of DestinationName after the final dot, or "" when there is none.
func (d UploadDirective) Extension() string {
	idx := strings.LastIndexByte(d.DestinationName, '.')
	if idx < 0 {
		return ""
	}
	return d.DestinationName[idx+1:]
}

// Header returns `~DY<loc>:<dest>,B,<ext>,<size>,<row-bytes>,`
func (d UploadDirective) Header() string {
	var b strings.Builder
	b.WriteString("~DY")
	b.WriteString(d.Location.String())
	b.WriteByte(':')
	b.WriteString(d.DestinationName)
	b.WriteByte(',')
	b.WriteString(uploadFormatBinary)
	b.WriteByte(',')
	b.WriteString(d.Extension())
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(len(d.SourceBytes)))
	b.WriteByte(',')
	b.WriteString(uploadRowBytes)
	b.WriteByte(',')
	return b.String()
}

// EncodeUpload encodes the header, the raw payload and a trailing line terminator.
func EncodeUpload(d UploadDirective) []byte {
	header := d.Header()
	data := make([]byte, 0, len(header)+len(d.SourceBytes)+len(LineTerminator))
	data = append(data, header...)
	data = append(data, d.SourceBytes...)
	data = append(data, LineTerminator...)
	return data
}

// SSLBundle names the local files holding the printer's https material.
type SSLBundle struct {
	CAPath   string
	CertPath string
	KeyPath  string
}

// Directives reads the CA, certificate and key files, in that order, into
// Flash directives. It fails on the first unreadable file.
func (b SSLBundle) Directives() ([]UploadDirective, error) {
	sources := []struct {
		path        string
		destination string
	}{
		{b.CAPath, SSLCADestination},
		{b.CertPath, SSLCertDestination},
		{b.KeyPath, SSLKeyDestination},
	}

	directives := make([]UploadDirective, 0, len(sources))
	for _, src := range sources {
		directive, err := ReadUploadDirective(Flash, src.path, src.destination)
		if err != nil {
			return nil, err
		}
		directives = append(directives, directive)
	}
	return directives, nil
}
