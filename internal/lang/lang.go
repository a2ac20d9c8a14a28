// Package lang registers the per-language tree-sitter metadata the rest of
// the indexer dispatches on: file extensions, the node kinds that denote a
// function/class/module/call/import, and package-indicator filenames.
package lang

// Language represents a supported programming language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	CPP        Language = "cpp"
	C          Language = "c"
	Lua        Language = "lua"

	// Extended (structural-only) set: Structure Walker + generic Definition
	// Extractor arm only, no specialised type inference or call resolution.
	CSharp     Language = "c-sharp"
	PHP        Language = "php"
	Scala      Language = "scala"
	Kotlin     Language = "kotlin"
	Ruby       Language = "ruby"
	Bash       Language = "bash"
	Dockerfile Language = "dockerfile"
	HCL        Language = "hcl"
	YAML       Language = "yaml"
	TOML       Language = "toml"
	JSON       Language = "json"
	CSS        Language = "css"
	SCSS       Language = "scss"
	HTML       Language = "html"
	Elixir     Language = "elixir"
	Erlang     Language = "erlang"
	Haskell    Language = "haskell"
	OCaml      Language = "ocaml"
	Perl       Language = "perl"
	R          Language = "r"
	SQL        Language = "sql"
	Swift      Language = "swift"
	Dart       Language = "dart"
	Groovy     Language = "groovy"
	ObjectiveC Language = "objc"
	Zig        Language = "zig"
)

// CoreLanguages is the initial (core) language set: the only languages the
// Type-Inference Engine and Call Resolver reason about beyond the generic
// path. See SPEC_FULL.md §6.3.
func CoreLanguages() []Language {
	return []Language{Python, Java, JavaScript, TypeScript, TSX, Rust, CPP, C, Go, Lua}
}

// AllLanguages returns every registered language, core and extended.
func AllLanguages() []Language {
	return []Language{
		Python, JavaScript, TypeScript, TSX, Go, Rust, Java, CPP, C, Lua,
		CSharp, PHP, Scala, Kotlin, Ruby, Bash, Dockerfile, HCL, YAML, TOML,
		CSS, SCSS, HTML, Elixir, Erlang, Haskell, OCaml, Perl, R, SQL,
		Swift, Dart, Groovy, ObjectiveC, Zig,
	}
}

// IsCore reports whether l is in the initial (core) language set.
func IsCore(l Language) bool {
	for _, c := range CoreLanguages() {
		if c == l {
			return true
		}
	}
	return false
}

// LanguageSpec defines the tree-sitter node types for a language.
type LanguageSpec struct {
	Language          Language
	FileExtensions    []string
	FunctionNodeTypes []string
	ClassNodeTypes    []string
	FieldNodeTypes    []string // tree-sitter node kinds for struct/class fields
	ModuleNodeTypes   []string
	CallNodeTypes     []string
	ImportNodeTypes   []string
	ImportFromTypes   []string
	PackageIndicators []string

	// DecoratorNodeTypes names the node kinds that wrap a decorated
	// function/class (Python decorators, Java/TS annotations, ...); used by
	// the Definition Extractor (SPEC_FULL.md §4.4).
	DecoratorNodeTypes []string

	// Structural-only metadata, populated per language where the original
	// carried it; no package in this module reads these fields.
	BranchingNodeTypes  []string
	VariableNodeTypes   []string
	AssignmentNodeTypes []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// byLanguage maps a Language to its spec for O(1) lookup.
var byLanguage = map[Language]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
	byLanguage[spec.Language] = spec
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".go").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	return byLanguage[lang]
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
