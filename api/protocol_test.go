package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGet(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "simple key", key: "device.friendly_name", want: "! U1 getvar \"device.friendly_name\"\r\n"},
		{name: "empty key", key: "", want: "! U1 getvar \"\"\r\n"},
		{name: "key with spaces", key: "a b", want: "! U1 getvar \"a b\"\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []byte(tt.want), EncodeGet(GetCommand{Key: tt.key}))
		})
	}
}

func TestEncodeSet(t *testing.T) {
	got := EncodeSet(SetCommand{Key: "ip.https.port", Value: "443"})
	assert.Equal(t, []byte("! U1 setvar \"ip.https.port\" \"443\"\r\n"), got)

	got = EncodeSet(SetCommand{Key: "media.type", Value: ""})
	assert.Equal(t, []byte("! U1 setvar \"media.type\" \"\"\r\n"), got)
}

func TestEncodeDo(t *testing.T) {
	tests := []struct {
		name string
		cmd  DoCommand
		want string
	}{
		{name: "no value", cmd: DoCommand{Key: "device.reset"}, want: "! U1 do \"device.reset\" \"\"\r\n"},
		{name: "with value", cmd: DoCommand{Key: "file.delete", Value: "E:LOGO.GRF"}, want: "! U1 do \"file.delete\" \"E:LOGO.GRF\"\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []byte(tt.want), EncodeDo(tt.cmd))
		})
	}
}

func TestEncode_QuotesPassThroughUnescaped(t *testing.T) {
	got := EncodeSet(SetCommand{Key: `we"ird`, Value: `"x"`})
	assert.Equal(t, []byte("! U1 setvar \"we\"ird\" \"\"x\"\"\r\n"), got)
}

func TestEncode_IsDeterministic(t *testing.T) {
	cmd := SetCommand{Key: "ip.addr", Value: "10.0.0.7"}
	first := EncodeSet(cmd)
	for _i := 0; _i < 10; _i++ {
		assert.Equal(t, first, EncodeSet(cmd))
	}
}

func TestEncode_DispatchesEveryVariant(t *testing.T) {
	upload := UploadDirective{Location: RAM, SourceBytes: []byte("abc"), DestinationName: "X.TXT"}

	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{name: "get", cmd: GetCommand{Key: "k"}, want: EncodeGet(GetCommand{Key: "k"})},
		{name: "set", cmd: SetCommand{Key: "k", Value: "v"}, want: EncodeSet(SetCommand{Key: "k", Value: "v"})},
		{name: "do", cmd: DoCommand{Key: "k"}, want: EncodeDo(DoCommand{Key: "k"})},
		{name: "upload", cmd: upload, want: EncodeUpload(upload)},
		{name: "get pointer", cmd: &GetCommand{Key: "k"}, want: EncodeGet(GetCommand{Key: "k"})},
		{name: "upload pointer", cmd: &upload, want: EncodeUpload(upload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_UnknownCommand(t *testing.T) {
	_, err := Encode(nil)
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	var nilGet *GetCommand
	_, err = Encode(nilGet)
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestExpectsResponse(t *testing.T) {
	assert.True(t, ExpectsResponse(GetCommand{Key: "k"}))
	assert.True(t, ExpectsResponse(&GetCommand{Key: "k"}))
	assert.False(t, ExpectsResponse(SetCommand{Key: "k"}))
	assert.False(t, ExpectsResponse(DoCommand{Key: "k"}))
	assert.False(t, ExpectsResponse(UploadDirective{}))
}
