package toml

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/effective-security/toolrouter/pkg/llmutils"
	"github.com/go-playground/validator/v10"
)

// ItemsKey is the table holding list values,
// TOML documents cannot have an array at the top level
const ItemsKey = "items"

type Encoder struct {
	validate *validator.Validate
}

func NewEncoder() *Encoder {
	return &Encoder{validate: validator.New()}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if isList(reflect.TypeOf(v)) {
		v = map[string]any{ItemsKey: v}
	}
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.BytesTrimBackticks(bs)
	if !isList(reflect.TypeOf(ret)) {
		return toml.Unmarshal(data, ret)
	}

	// lists are decoded through their JSON form,
	// struct fields must have the same toml and json names
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc[ItemsKey])
	if err != nil {
		return err
	}
	return json.Unmarshal(js, ret)
}

func (e *Encoder) Validate(req any) error {
	return e.validate.Struct(req)
}

func isList(t reflect.Type) bool {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array)
}
