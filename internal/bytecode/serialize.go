// On-disk module format: a gob-encoded Module, the ".ecb" file
// cmd/ecmalite loads. Grounded on the teacher's Encode/MatchE split in
// vm_program.go (compiled form and execution kept in separate files);
// gob is the idiomatic stdlib choice for a Go-to-Go binary format with
// no cross-language wire contract to honor, matching how the teacher
// itself only ever serializes its bytecode for its own VM to read back.
package bytecode

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// EncodeModule writes mod's gob encoding to w.
func EncodeModule(w io.Writer, mod *Module) error {
	return gob.NewEncoder(w).Encode(mod)
}

// DecodeModule reads a gob-encoded Module from r.
func DecodeModule(r io.Reader) (*Module, error) {
	var mod Module
	if err := gob.NewDecoder(r).Decode(&mod); err != nil {
		return nil, fmt.Errorf("bytecode: decode module: %w", err)
	}
	return &mod, nil
}

// EncodeModuleBytes is a convenience wrapper returning the encoded
// bytes directly, for tests that round-trip a hand-assembled Module.
func EncodeModuleBytes(mod *Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeModule(&buf, mod); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
