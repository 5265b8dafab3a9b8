package tabular

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
	"rsc.io/ordered"
)

type Marshaler interface {
	Marshal(v any) (data []byte, err error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, v any) error
}

type MarshalUnmarshaler interface {
	Marshaler
	Unmarshaler
}

var (
	JsonMaUn    MarshalUnmarshaler = jsonMarshalUnmarshaler{}
	GobMaUn     MarshalUnmarshaler = gobMarshalUnmarshaler{}
	MsgpackMaUn MarshalUnmarshaler = msgpackMarshalUnmarshaler{}
	orderedMaUn MarshalUnmarshaler = orderedMarshalerUnmarshaler{}
)

// MaUnByName resolves a codec name as used in configuration.
func MaUnByName(name string) (MarshalUnmarshaler, bool) {
	switch name {
	case "json":
		return JsonMaUn, true
	case "gob":
		return GobMaUn, true
	case "msgpack", "":
		return MsgpackMaUn, true
	}
	return nil, false
}

type jsonMarshalUnmarshaler struct{}

func (jsonMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type gobMarshalUnmarshaler struct{}

func (gobMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	err := encoder.Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(v)
}

type msgpackMarshalUnmarshaler struct{}

func (msgpackMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// orderedMarshalerUnmarshaler encodes tuples so that byte order follows tuple order.
type orderedMarshalerUnmarshaler struct{}

func (orderedMarshalerUnmarshaler) Marshal(v any) ([]byte, error) {
	vList, ok := v.([]any)
	if !ok {
		return nil, ErrCannotMarshal(v)
	}
	if !ordered.CanEncode(vList...) {
		return nil, ErrCannotMarshal(v)
	}
	return ordered.Encode(vList...), nil
}

func (orderedMarshalerUnmarshaler) Unmarshal(data []byte, v any) error {
	vList, ok := v.(*[]any)
	if !ok {
		return ErrCannotUnmarshal(v)
	}
	decoded, err := ordered.DecodeAny(data)
	if err != nil {
		return err
	}
	*vList = decoded
	return nil
}

// MarshalCsv encodes directives, columns and their properties included.
func MarshalCsv(maUn MarshalUnmarshaler, c *Csv) ([]byte, error) {
	if c == nil {
		return nil, ErrMissingArgument("csv")
	}
	return maUn.Marshal(c)
}

func UnmarshalCsv(maUn MarshalUnmarshaler, data []byte) (*Csv, error) {
	c := &Csv{}
	if err := maUn.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
