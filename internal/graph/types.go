package graph

// Symbol kinds produced by external parsers. The field is an open string
// enum: unknown kinds are stored verbatim.
const (
	KindFunction  = "function"
	KindMethod    = "method"
	KindVariable  = "variable"
	KindClass     = "class"
	KindParameter = "parameter"
)

// Reference kinds.
const (
	RefDirect   = "direct"
	RefMethod   = "method"
	RefCallback = "callback"
	RefIndirect = "indirect"
)

// Symbol is a named code entity at a specific file position. Identity is the
// caller-supplied ID (typically "path::name::line"); the graph never merges
// symbols that share a name across files.
type Symbol struct {
	ID         string
	Name       string
	Kind       string
	FilePath   string
	Line       int
	Column     int
	ClassName  string // owning class when Kind is "method", empty otherwise
	IsExported bool
	IsStatic   bool
}

// Reference is a directed edge recording that the code of FromSymbolID
// references ToSymbolID. Endpoint IDs are not checked against the symbol
// table: dangling endpoints are tolerated and skipped on traversal.
type Reference struct {
	ID           string
	FromSymbolID string
	ToSymbolID   string
	Kind         string
	FilePath     string
	Line         int
	Column       int
}

// ImportEntry is one import statement of a file. Carried for the host's
// benefit only; imports play no part in caller/callee resolution.
type ImportEntry struct {
	Source     string
	Imported   []string
	IsTypeOnly bool
}

// FileData is a file's contribution to the index. Its symbol list is the
// definitive record of which symbols belong to the file for cascading
// removal.
type FileData struct {
	Path    string
	Symbols []Symbol
	Imports []ImportEntry
}

// GraphStats is a read-only snapshot of index size. MemoryUsageBytes is a
// sizeof-based approximation that ignores variable-length string storage.
type GraphStats struct {
	TotalSymbols     int
	TotalReferences  int
	TotalFiles       int
	MemoryUsageBytes uint64
}
