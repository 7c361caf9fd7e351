package refgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jward/refgraph/internal/graph"
)

// Dump is the wire format produced by external parsers. Every field is
// independently optional: absent fields decode to their zero values, which
// the index stores as-is rather than rejecting — the boundary trades
// strictness for liveness. Only input shape (wrong JSON types) fails.
type Dump struct {
	Files      []DumpFile      `json:"files"`
	References []DumpReference `json:"references"`
}

// DumpFile mirrors FileData on the wire.
type DumpFile struct {
	Path    string       `json:"path"`
	Symbols []DumpSymbol `json:"symbols"`
	Imports []DumpImport `json:"imports"`
}

// DumpSymbol mirrors Symbol on the wire. The "type" key matches the parser
// vocabulary (function, method, variable, class, parameter).
type DumpSymbol struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	FilePath   string `json:"filePath"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	ClassName  string `json:"className"`
	IsExported bool   `json:"isExported"`
	IsStatic   bool   `json:"isStatic"`
}

// DumpReference mirrors Reference on the wire.
type DumpReference struct {
	ID           string `json:"id"`
	FromSymbolID string `json:"fromSymbolId"`
	ToSymbolID   string `json:"toSymbolId"`
	Type         string `json:"type"`
	FilePath     string `json:"filePath"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
}

// DumpImport mirrors ImportEntry on the wire.
type DumpImport struct {
	Source     string   `json:"source"`
	Imported   []string `json:"imported"`
	IsTypeOnly bool     `json:"isTypeOnly"`
}

// LoadDump reads a parser dump file and applies it to the Graph.
func (e *Engine) LoadDump(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("refgraph: open dump: %w", err)
	}
	defer f.Close()
	if err := e.ApplyDump(f); err != nil {
		return fmt.Errorf("refgraph: dump %s: %w", path, err)
	}
	return nil
}

// ApplyDump decodes a dump payload and applies it. Files already present in
// the Graph are replaced with full cascade (UpdateFile); new paths are
// added. References are applied after all files, in payload order.
func (e *Engine) ApplyDump(r io.Reader) error {
	var dump Dump
	dec := json.NewDecoder(r)
	if err := dec.Decode(&dump); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	e.Apply(&dump)
	return nil
}

// Apply applies an already-decoded dump to the Graph.
func (e *Engine) Apply(dump *Dump) {
	for _, df := range dump.Files {
		fd := dumpFileData(df)
		if e.graph.HasFile(fd.Path) {
			e.graph.UpdateFile(fd.Path, fd)
		} else {
			e.graph.AddFile(fd)
		}
	}
	for _, dr := range dump.References {
		e.graph.AddReference(graph.Reference{
			ID:           dr.ID,
			FromSymbolID: dr.FromSymbolID,
			ToSymbolID:   dr.ToSymbolID,
			Kind:         dr.Type,
			FilePath:     dr.FilePath,
			Line:         dr.Line,
			Column:       dr.Column,
		})
	}
}

func dumpFileData(df DumpFile) graph.FileData {
	fd := graph.FileData{Path: df.Path}
	for _, ds := range df.Symbols {
		fd.Symbols = append(fd.Symbols, graph.Symbol{
			ID:         ds.ID,
			Name:       ds.Name,
			Kind:       ds.Type,
			FilePath:   ds.FilePath,
			Line:       ds.Line,
			Column:     ds.Column,
			ClassName:  ds.ClassName,
			IsExported: ds.IsExported,
			IsStatic:   ds.IsStatic,
		})
	}
	for _, di := range df.Imports {
		fd.Imports = append(fd.Imports, graph.ImportEntry{
			Source:     di.Source,
			Imported:   di.Imported,
			IsTypeOnly: di.IsTypeOnly,
		})
	}
	return fd
}
