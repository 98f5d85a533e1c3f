package extract

// CommandDetectionConfig filters invoke/Command call candidates. The
// built-in sets come from field experience with real Tauri repos; projects
// extend them via .loctree/config.toml.
type CommandDetectionConfig struct {
	DOMExclusions       map[string]bool
	NonInvokeExclusions map[string]bool
	InvalidCommandNames map[string]bool
	// CustomCommandMacros lists Rust attribute macros that mark command
	// handlers in addition to tauri::command (e.g. "specta::specta").
	CustomCommandMacros []string
}

// Known DOM APIs to exclude from Tauri command detection.
var domExclusions = []string{
	"execCommand",
	"queryCommandState",
	"queryCommandEnabled",
	"queryCommandSupported",
	"queryCommandValue",
}

// Functions that are NOT Tauri invokes. These happen to contain "invoke" or
// "Command" but never cross the wire.
var nonInvokeExclusions = []string{
	"useVoiceCommands",
	"useAssistantToolCommands",
	"useNewVisitVoiceCommands",
	"useAiTopicCommands",
	"runGitCommand",
	"executeCommand",
	"buildCommandString",
	"buildCommandArgs",
	"classifyCommand",
	"onCommandContext",
	"enqueueCommandContext",
	"setLastCommand",
	"setCommandError",
	"recordCommandInvokeStart",
	"recordCommandInvokeFinish",
	"handleInvokeFailure",
	"isCommandMissingError",
	"isRetentionCommandMissing",
	"collectInvokeCommands",
	"collectUsedCommandsFromRoamLogs",
	"extractInvokeCommandsFromText",
	"scanCommandsInFiles",
	"parseBackendCommands",
	"buildSessionCommandPayload",
	"onMentionCommand",
	"onSlashCommand",
	"invokeFallbackMock",
	"resolveMockCommand",
}

// Command names that are clearly not Tauri commands (CLI tools, tests).
var invalidCommandNames = []string{
	"node", "npm", "pnpm", "yarn", "bun", "cargo", "rustc", "rustup", "git",
	"gh", "python", "python3", "pip", "brew", "apt", "yum", "sh", "bash",
	"zsh", "curl", "wget", "docker", "kubectl",
	"test", "mock", "stub", "fake",
}

// NewCommandDetectionConfig merges the built-in exclusion sets with
// project-level additions.
func NewCommandDetectionConfig(dom, nonInvoke, invalid, customMacros []string) *CommandDetectionConfig {
	cfg := &CommandDetectionConfig{
		DOMExclusions:       make(map[string]bool),
		NonInvokeExclusions: make(map[string]bool),
		InvalidCommandNames: make(map[string]bool),
		CustomCommandMacros: customMacros,
	}
	for _, s := range domExclusions {
		cfg.DOMExclusions[s] = true
	}
	for _, s := range dom {
		cfg.DOMExclusions[s] = true
	}
	for _, s := range nonInvokeExclusions {
		cfg.NonInvokeExclusions[s] = true
	}
	for _, s := range nonInvoke {
		cfg.NonInvokeExclusions[s] = true
	}
	for _, s := range invalidCommandNames {
		cfg.InvalidCommandNames[s] = true
	}
	for _, s := range invalid {
		cfg.InvalidCommandNames[s] = true
	}
	return cfg
}

// DefaultCommandDetectionConfig returns the built-in sets only.
func DefaultCommandDetectionConfig() *CommandDetectionConfig {
	return NewCommandDetectionConfig(nil, nil, nil, nil)
}
