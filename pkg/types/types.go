// Package types defines the entities shared by the scanner, the snapshot
// store, and the finding engines. Everything here is serialized into the
// snapshot file, so field names and JSON tags are part of the schema.
package types

// Language tags a source file. The values are file-extension shaped and
// appear verbatim in snapshots and JSON output.
type Language string

const (
	LangTS     Language = "ts"
	LangTSX    Language = "tsx"
	LangJS     Language = "js"
	LangJSX    Language = "jsx"
	LangRust   Language = "rs"
	LangPython Language = "py"
	LangGo     Language = "go"
	LangCSS    Language = "css"
	LangSvelte Language = "svelte"
	LangVue    Language = "vue"
)

// IsFrontend reports whether the language runs in a JS toolchain. Event
// bridges whose emit and listen sides are both frontend are FE↔FE sync,
// not orphans.
func (l Language) IsFrontend() bool {
	switch l {
	case LangTS, LangTSX, LangJS, LangJSX, LangSvelte, LangVue:
		return true
	}
	return false
}

// ImportKind classifies an import entry.
type ImportKind string

const (
	ImportStatic     ImportKind = "static"
	ImportType       ImportKind = "type"
	ImportSideEffect ImportKind = "side_effect"
	ImportDynamic    ImportKind = "dynamic"
)

// Resolution says what a specifier resolved to.
type Resolution string

const (
	ResolutionLocal   Resolution = "local"
	ResolutionStdlib  Resolution = "stdlib"
	ResolutionDynamic Resolution = "dynamic"
	ResolutionUnknown Resolution = "unknown"
)

// ImportSymbol is one binding introduced by an import.
type ImportSymbol struct {
	Name      string `json:"name"`
	Alias     string `json:"alias,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// ImportEntry is one import statement (or use declaration) in a file.
type ImportEntry struct {
	Source          string         `json:"source"`
	Kind            ImportKind     `json:"kind"`
	ResolvedPath    string         `json:"resolved_path,omitempty"`
	Resolution      Resolution     `json:"resolution"`
	Line            int            `json:"line"`
	IsBare          bool           `json:"is_bare,omitempty"`
	IsTypeChecking  bool           `json:"is_type_checking,omitempty"` // inside a Python TYPE_CHECKING block
	IsLazy          bool           `json:"is_lazy,omitempty"`          // function-scoped import
	IsCrateRelative bool           `json:"is_crate_relative,omitempty"`
	IsSuperRelative bool           `json:"is_super_relative,omitempty"`
	IsSelfRelative  bool           `json:"is_self_relative,omitempty"`
	RawPath         string         `json:"raw_path,omitempty"` // Rust use path verbatim
	Symbols         []ImportSymbol `json:"symbols,omitempty"`
}

// ReexportKind distinguishes star from named re-exports.
type ReexportKind string

const (
	ReexportStar  ReexportKind = "star"
	ReexportNamed ReexportKind = "named"
)

// ReexportName is an (original, exported) pair of a named re-export.
type ReexportName struct {
	Original string `json:"original"`
	Exported string `json:"exported"`
}

// ReexportEntry is one `export … from "…"` (or __init__.py equivalent).
type ReexportEntry struct {
	Source   string         `json:"source"`
	Kind     ReexportKind   `json:"kind"`
	Names    []ReexportName `json:"names,omitempty"`
	Resolved string         `json:"resolved,omitempty"`
	Line     int            `json:"line"`
}

// ParamInfo describes one parameter of an exported function.
type ParamInfo struct {
	Name           string `json:"name"`
	TypeAnnotation string `json:"type_annotation,omitempty"`
	HasDefault     bool   `json:"has_default,omitempty"`
}

// ExportSymbol is one symbol a file makes public.
type ExportSymbol struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`        // function|class|const|var|type|interface|enum|reexport|default|__all__|struct|trait|mod
	ExportType string      `json:"export_type"` // named|default
	Line       int         `json:"line"`
	Params     []ParamInfo `json:"params,omitempty"`
	// Derives holds the lowercased tokens of a Rust item's #[derive(…)]
	// list (serialize, parser…). Drives false-positive suppression.
	Derives []string `json:"derives,omitempty"`
}

// CommandRef is a frontend invoke call or a backend command handler.
type CommandRef struct {
	Name        string `json:"name"`
	ExposedName string `json:"exposed_name,omitempty"` // #[tauri::command(rename = …)]
	Line        int    `json:"line"`
	GenericType string `json:"generic_type,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// WireName returns the name commands are matched under: the rename
// attribute when present, the function name otherwise.
func (c CommandRef) WireName() string {
	if c.ExposedName != "" {
		return c.ExposedName
	}
	return c.Name
}

// EventKind distinguishes emit from listen sites.
type EventKind string

const (
	EventEmit   EventKind = "emit"
	EventListen EventKind = "listen"
)

// EventRef is an event emit or listen site.
type EventRef struct {
	Name    string    `json:"name"`     // resolved name (consts followed)
	RawName string    `json:"raw_name"` // literal or identifier as written
	Line    int       `json:"line"`
	Kind    EventKind `json:"kind"`
	Awaited bool      `json:"awaited,omitempty"`
	Payload string    `json:"payload,omitempty"`
}

// SignatureUse records a type name appearing in an exported function's
// signature. Feeds opaque-passthrough detection.
type SignatureUse struct {
	Function string `json:"function"`
	Position string `json:"position"` // parameter|return
	TypeName string `json:"type_name"`
	Line     int    `json:"line"`
}

// RouteInfo is an HTTP route registered via a decorator.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Line   int    `json:"line"`
}

// CasingDrift records a snake_case command invoked with a camelCase payload
// key, a frequent source of silent Tauri argument mismatches.
type CasingDrift struct {
	Command string `json:"command"`
	Key     string `json:"key"`
	Line    int    `json:"line"`
}

// CSSLayer is one selector with layout-affecting declarations.
type CSSLayer struct {
	Selector string `json:"selector"`
	Position string `json:"position,omitempty"`
	ZIndex   string `json:"z_index,omitempty"`
	Line     int    `json:"line"`
}

// FileAnalysis is the full per-file fact sheet produced by an extractor.
type FileAnalysis struct {
	Path        string   `json:"path"` // repo-relative, forward slashes
	Language    Language `json:"language"`
	LOC         int      `json:"loc"`
	Mtime       int64    `json:"mtime"` // unix nanoseconds
	Size        int64    `json:"size"`
	IsTest      bool     `json:"is_test,omitempty"`
	IsGenerated bool     `json:"is_generated,omitempty"`

	Imports        []ImportEntry   `json:"imports,omitempty"`
	Reexports      []ReexportEntry `json:"reexports,omitempty"`
	Exports        []ExportSymbol  `json:"exports,omitempty"`
	DynamicImports []string        `json:"dynamic_imports,omitempty"`

	CommandCalls    []CommandRef  `json:"command_calls,omitempty"`
	CommandHandlers []CommandRef  `json:"command_handlers,omitempty"`
	EventEmits      []EventRef    `json:"event_emits,omitempty"`
	EventListens    []EventRef    `json:"event_listens,omitempty"`
	CasingDrifts    []CasingDrift `json:"casing_drifts,omitempty"`

	// LocalUses is a multiset of identifiers referenced inside the file:
	// bare calls, base classes, path-qualified Rust calls, type hints,
	// SFC template references.
	LocalUses map[string]int `json:"local_uses,omitempty"`

	SignatureUses []SignatureUse `json:"signature_uses,omitempty"`

	// TauriRegisteredHandlers holds names listed in generate_handler!.
	TauriRegisteredHandlers []string `json:"tauri_registered_handlers,omitempty"`

	// RustQualifiedCalls holds the final identifiers of path-qualified
	// calls (mod::sub::name(…)). Pooled across Rust files so exports
	// invoked only by qualified path are not reported dead.
	RustQualifiedCalls []string `json:"rust_qualified_calls,omitempty"`

	HasWeakCollections   bool        `json:"has_weak_collections,omitempty"`
	DynamicExecTemplates []string    `json:"dynamic_exec_templates,omitempty"`
	SysModulesInjections []string    `json:"sys_modules_injections,omitempty"`
	Routes               []RouteInfo `json:"routes,omitempty"`
	PytestFixtures       []string    `json:"pytest_fixtures,omitempty"`
	PyRaceIndicators     []string    `json:"py_race_indicators,omitempty"`
	IsTypedPackage       bool        `json:"is_typed_package,omitempty"`
	IsNamespacePackage   bool        `json:"is_namespace_package,omitempty"`
	IsFlowFile           bool        `json:"is_flow_file,omitempty"`

	// CSSLayers holds layout-relevant declarations for the layoutmap view.
	CSSLayers []CSSLayer `json:"css_layers,omitempty"`

	// CyclomaticMax is the highest per-function cyclomatic complexity in a
	// Go file, measured with gocyclo. Zero for other languages.
	CyclomaticMax int `json:"cyclomatic_max,omitempty"`
}

// AddLocalUse bumps the use count for an identifier.
func (fa *FileAnalysis) AddLocalUse(name string) {
	if name == "" {
		return
	}
	if fa.LocalUses == nil {
		fa.LocalUses = make(map[string]int)
	}
	fa.LocalUses[name]++
}

// EdgeLabel classifies a graph edge.
type EdgeLabel string

const (
	EdgeImport        EdgeLabel = "import"
	EdgeDynamicImport EdgeLabel = "dynamic_import"
	EdgeLazyImport    EdgeLabel = "lazy_import"
	EdgeTypeImport    EdgeLabel = "type_import"
	EdgeReexport      EdgeLabel = "reexport"
)

// GraphEdge is one dependency edge between two repo files.
type GraphEdge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label EdgeLabel `json:"label"`
}

// BarrelFile is an index-like module whose exports are mostly re-exports.
type BarrelFile struct {
	Path          string   `json:"path"`
	ModuleID      string   `json:"module_id"`
	ReexportCount int      `json:"reexport_count"`
	Targets       []string `json:"targets,omitempty"`
	Mixed         bool     `json:"mixed,omitempty"` // also defines its own symbols
}

// BridgeStatus labels a command bridge.
type BridgeStatus string

const (
	BridgeOK                  BridgeStatus = "ok"
	BridgeMissingHandler      BridgeStatus = "missing_handler"
	BridgeUnusedHandler       BridgeStatus = "unused_handler"
	BridgeUnregisteredHandler BridgeStatus = "unregistered_handler"
)

// BridgeSite is one call or handler location.
type BridgeSite struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// CommandBridge pairs frontend invoke sites with a backend handler under
// one wire name.
type CommandBridge struct {
	Name              string       `json:"name"`
	Status            BridgeStatus `json:"status"`
	Calls             []BridgeSite `json:"calls,omitempty"`
	Handler           *BridgeSite  `json:"handler,omitempty"` // canonical: first by (path, line)
	DuplicateHandlers []BridgeSite `json:"duplicate_handlers,omitempty"`
}

// EventBridge pairs emit sites with listen sites under one event name.
type EventBridge struct {
	Name         string       `json:"name"`
	Emits        []BridgeSite `json:"emits,omitempty"`
	Listens      []BridgeSite `json:"listens,omitempty"`
	IsFESync     bool         `json:"is_fe_sync,omitempty"`     // both sides entirely frontend
	SameFileSync bool         `json:"same_file_sync,omitempty"` // emit and listen in one file
}

// ResolverConfig is the resolution state captured at scan time so a later
// process can answer queries without re-reading tsconfig/pyproject.
type ResolverConfig struct {
	TSBaseURL   string              `json:"ts_base_url,omitempty"`
	TSPaths     map[string][]string `json:"ts_paths,omitempty"`
	PythonRoots []string            `json:"python_roots,omitempty"`
}

// GitInfo is lightweight repository metadata read from .git without
// invoking git. All fields may be empty.
type GitInfo struct {
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// SnapshotMetadata describes one scan.
type SnapshotMetadata struct {
	SchemaVersion  string         `json:"schema_version"`
	Roots          []string       `json:"roots"`
	Languages      []Language     `json:"languages"`
	FileCount      int            `json:"file_count"`
	TotalLOC       int            `json:"total_loc"`
	ScanDurationMS int64          `json:"scan_duration_ms"`
	ResolverConfig ResolverConfig `json:"resolver_config"`
	Git            GitInfo        `json:"git,omitempty"`
}

// Snapshot is the persisted analysis document all finding engines consume.
type Snapshot struct {
	Metadata       SnapshotMetadata    `json:"metadata"`
	Files          []*FileAnalysis     `json:"files"`
	Edges          []GraphEdge         `json:"edges,omitempty"`
	ExportIndex    map[string][]string `json:"export_index,omitempty"` // symbol → exporting files
	CommandBridges []CommandBridge     `json:"command_bridges,omitempty"`
	EventBridges   []EventBridge       `json:"event_bridges,omitempty"`
	Barrels        []BarrelFile        `json:"barrels,omitempty"`
}

// FileByPath returns the analysis for a repo-relative path, or nil.
func (s *Snapshot) FileByPath(path string) *FileAnalysis {
	for _, f := range s.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// ExitError carries a process exit code through cobra's RunE chain.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
