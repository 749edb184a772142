package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is written into every serialized program. Unmarshal rejects
// any other version.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireCode struct {
	Version      int            `cbor:"1,keyasint"`
	Instructions []uint32       `cbor:"2,keyasint"`
	Constants    []wireValue    `cbor:"3,keyasint,omitempty"`
	GlobalNames  []string       `cbor:"4,keyasint,omitempty"`
	Functions    []wireFunction `cbor:"5,keyasint,omitempty"`
	Locations    []wireLocation `cbor:"6,keyasint,omitempty"`
	Filename     string         `cbor:"7,keyasint,omitempty"`
	Source       string         `cbor:"8,keyasint,omitempty"`
}

type wireValue struct {
	Type  uint8   `cbor:"1,keyasint"`
	Bool  bool    `cbor:"2,keyasint,omitempty"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Float float64 `cbor:"4,keyasint,omitempty"`
}

type wireFunction struct {
	Name       string   `cbor:"1,keyasint"`
	Entry      int      `cbor:"2,keyasint"`
	End        int      `cbor:"3,keyasint"`
	Parameters []string `cbor:"4,keyasint,omitempty"`
	LocalNames []string `cbor:"5,keyasint,omitempty"`
}

type wireLocation struct {
	Line   int `cbor:"1,keyasint"`
	Column int `cbor:"2,keyasint"`
}

// Marshal serializes a Code to canonical CBOR bytes.
func Marshal(code *Code) ([]byte, error) {
	w := wireCode{
		Version:      FormatVersion,
		Instructions: code.instructions,
		GlobalNames:  code.globalNames,
		Filename:     code.filename,
		Source:       code.source,
	}
	if w.Instructions == nil {
		w.Instructions = []uint32{}
	}
	for _, c := range code.constants {
		wv := wireValue{Type: uint8(c.Type())}
		switch c.Type() {
		case object.BOOL:
			wv.Bool = c.Bool()
		case object.INT:
			wv.Int = c.Int()
		case object.FLOAT:
			wv.Float = c.Float()
		}
		w.Constants = append(w.Constants, wv)
	}
	for _, fn := range code.functions {
		w.Functions = append(w.Functions, wireFunction{
			Name:       fn.name,
			Entry:      fn.entry,
			End:        fn.end,
			Parameters: fn.parameters,
			LocalNames: fn.localNames,
		})
	}
	for _, loc := range code.locations {
		w.Locations = append(w.Locations, wireLocation(loc))
	}
	data, err := cborEncMode.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a Code from CBOR bytes produced by Marshal.
func Unmarshal(data []byte) (*Code, error) {
	var w wireCode
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal: %w", err)
	}
	if w.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d (want %d)", w.Version, FormatVersion)
	}
	if len(w.Locations) != 0 && len(w.Locations) != len(w.Instructions) {
		return nil, fmt.Errorf("bytecode: %d locations for %d instructions", len(w.Locations), len(w.Instructions))
	}
	params := CodeParams{
		Instructions: w.Instructions,
		GlobalNames:  w.GlobalNames,
		Filename:     w.Filename,
		Source:       w.Source,
	}
	for i, wv := range w.Constants {
		switch object.Type(wv.Type) {
		case object.BOOL:
			params.Constants = append(params.Constants, object.NewBool(wv.Bool))
		case object.INT:
			params.Constants = append(params.Constants, object.NewInt(wv.Int))
		case object.FLOAT:
			params.Constants = append(params.Constants, object.NewFloat(wv.Float))
		default:
			return nil, fmt.Errorf("bytecode: constant %d has unknown type %d", i, wv.Type)
		}
	}
	for _, wf := range w.Functions {
		if wf.Entry < 0 || wf.End > len(w.Instructions) || wf.Entry >= wf.End {
			return nil, fmt.Errorf("bytecode: function %q spans invalid range [%d, %d)", wf.Name, wf.Entry, wf.End)
		}
		params.Functions = append(params.Functions, NewFunction(FunctionParams{
			Name:       wf.Name,
			Entry:      wf.Entry,
			End:        wf.End,
			Parameters: wf.Parameters,
			LocalNames: wf.LocalNames,
		}))
	}
	for _, wl := range w.Locations {
		params.Locations = append(params.Locations, SourceLocation(wl))
	}
	return NewCode(params), nil
}
