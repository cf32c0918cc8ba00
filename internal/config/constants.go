package config

const SourceFileExt = ".ool"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ool", ".oolong"}

// Unit names the engine itself evaluates under. Both are interned in the
// loaded-unit set like any file, so use() of either name is a no-op.
const (
	EvalUnitName    = "__EVAL__"
	PreludeUnitName = "standard prelude"
)

// DefaultMaxDepth bounds evaluator nesting. Expressions, blocks and script
// calls all count toward it; exceeding it fails with a depth error instead
// of overflowing the Go stack.
const DefaultMaxDepth = 10000

// ConfigFileName is the per-project options file read by the CLI.
const ConfigFileName = "oolong.yaml"

// PathEnvVar lists extra module search roots, separated like $PATH.
const PathEnvVar = "OOLONGPATH"

// HistoryFileName is the REPL history file, stored in the home directory.
const HistoryFileName = ".oolong_history"

// ReservedWords may not be used as variable, function or parameter names.
// The dispatch engine is seeded with these at construction.
var ReservedWords = []string{
	"def", "fun", "while", "for", "if", "else",
	"&&", "||", ",", ":=",
	"var", "return", "break", "true", "false", "_",
}

// Built-in type names
const (
	VectorTypeName   = "Vector"
	MapTypeName      = "Map"
	PairTypeName     = "Pair"
	FunctionTypeName = "Function"
	DatabaseTypeName = "Database"
)
