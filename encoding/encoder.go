// Package encoding renders structured tool payloads as strings
// and decodes them back on the client side.
package encoding

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/toolrouter/encoding/json"
	textenc "github.com/effective-security/toolrouter/encoding/text"
	tomlenc "github.com/effective-security/toolrouter/encoding/toml"
	yamlenc "github.com/effective-security/toolrouter/encoding/yaml"
)

// Encoder converts payloads to and from their string form
type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(bs []byte, ret any) error
}

// Validator is implemented by encoders that can validate decoded structs
type Validator interface {
	Validate(any) error
}

type Format = string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatText Format = "text"
)

// FormatDefault is the format used when none is configured
var FormatDefault = FormatJSON

// ErrUnsupportedFormat is returned for unknown formats
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats returns the supported formats
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatText}
}

// New returns the encoder for the format
func New(format Format) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return jsonenc.NewEncoder(), nil
	case FormatYAML:
		return yamlenc.NewEncoder(), nil
	case FormatTOML:
		return tomlenc.NewEncoder(), nil
	case FormatText:
		return textenc.NewEncoder(), nil
	default:
		return nil, errors.Mark(errors.Newf("unsupported format: %s", format), ErrUnsupportedFormat)
	}
}

// Encode returns the payload in the format.
// Strings are returned as-is.
func Encode(enc Encoder, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %T", v)
	}
	return strings.TrimSpace(string(bs)), nil
}

// Decode parses the data into a new T.
// Structs are validated when the encoder supports it.
func Decode[T any](enc Encoder, data []byte) (*T, error) {
	var target T
	if err := enc.Unmarshal(data, &target); err != nil {
		return nil, errors.Wrap(err, "failed to decode")
	}
	if v, ok := enc.(Validator); ok && reflect.Indirect(reflect.ValueOf(target)).Kind() == reflect.Struct {
		if err := v.Validate(target); err != nil {
			return nil, errors.Wrap(err, "failed to validate")
		}
	}
	return &target, nil
}

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*textenc.Encoder)(nil)
)
