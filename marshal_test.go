package tabular

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestOrderedCodec_RowKeysFollowInsertionOrder(t *testing.T) {
	var keys [][]byte
	for _, seq := range []uint64{1, 2, 9, 10, 255, 256, 1 << 40} {
		key, err := rowKey(seq)
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, key)
	}
	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i-1], keys[i]) >= 0 {
			t.Fatalf("key %d does not sort before key %d", i-1, i)
		}
	}

	var decoded []any
	if err := orderedMaUn.Unmarshal(keys[3], &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0] != int64(10) {
		t.Fatalf("unexpected decoded key %v", decoded)
	}
}

func TestOrderedCodec_Tuples(t *testing.T) {
	tuples := [][]any{
		{"a", int64(2)},
		{"a", int64(10)},
		{"ab", int64(1)},
		{"b", int64(-5)},
	}
	var encoded [][]byte
	for _, tuple := range tuples {
		data, err := orderedMaUn.Marshal(tuple)
		if err != nil {
			t.Fatal(err)
		}
		encoded = append(encoded, data)
	}
	if !slices.IsSortedFunc(encoded, bytes.Compare) {
		t.Fatal("encoded tuples should sort like the tuples")
	}

	var decoded []any
	if err := orderedMaUn.Unmarshal(encoded[1], &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[0] != "a" || decoded[1] != int64(10) {
		t.Fatalf("unexpected tuple %v", decoded)
	}

	if _, err := orderedMaUn.Marshal("not a tuple"); err == nil {
		t.Fatal("expected an error for a non tuple")
	}
	var wrong string
	if err := orderedMaUn.Unmarshal(encoded[0], &wrong); err == nil {
		t.Fatal("expected an error for a non tuple target")
	}
}

func directives() *Csv {
	return NewCsv().
		WithHeader(false).
		WithDelimiter(';').
		WithQuote('\'').
		WithEncoding("ISO-8859-1").
		WithMaxRows(10).
		WithCols(
			Column{Name: "id", Properties: Props(Prop("kind", "key"))},
			Col("name"),
		)
}

func TestMarshalCsv_RoundTrip(t *testing.T) {
	for _, name := range []string{"json", "gob", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			maUn, ok := MaUnByName(name)
			if !ok {
				t.Fatalf("unknown codec %s", name)
			}
			original := directives()
			data, err := MarshalCsv(maUn, original)
			if err != nil {
				t.Fatal(err)
			}
			decoded, err := UnmarshalCsv(maUn, data)
			if err != nil {
				t.Fatal(err)
			}
			if decoded.HasHeader || decoded.Delimiter != ';' || decoded.Quote != '\'' {
				t.Fatalf("unexpected directives %+v", decoded)
			}
			if decoded.Encoding != "ISO-8859-1" || decoded.MaxRows != 10 {
				t.Fatalf("unexpected directives %+v", decoded)
			}
			if !slices.Equal(Names(decoded.Columns), []string{"id", "name"}) {
				t.Fatalf("unexpected columns %v", Names(decoded.Columns))
			}
			if kind := GetPropOr(decoded.Columns[0].Properties, "kind", ""); kind != "key" {
				t.Fatalf("column properties were lost, got %q", kind)
			}
			if decoded.Columns[1].Properties.Len() != 0 {
				t.Fatalf("unexpected properties %v", decoded.Columns[1].Properties)
			}
		})
	}
}

func TestMarshalCsv_Preconditions(t *testing.T) {
	if _, err := MarshalCsv(JsonMaUn, nil); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if _, err := UnmarshalCsv(JsonMaUn, []byte("not json")); err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := MaUnByName("yaml"); ok {
		t.Fatal("yaml is not a codec")
	}
	if maUn, ok := MaUnByName(""); !ok || maUn != MsgpackMaUn {
		t.Fatal("msgpack is the default codec")
	}
}
