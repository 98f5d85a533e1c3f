package discovery

import (
	"path"
	"strings"
)

// testPathMarkers are directory names that hold tests across ecosystems.
var testPathMarkers = []string{
	"tests/", "__tests__/", "test/", "cypress/", "e2e/", "spec/",
}

// IsTestPath applies the cross-language test-file naming heuristics to a
// repo-relative path.
func IsTestPath(relPath string) bool {
	p := strings.ToLower(relPath)
	name := path.Base(p)

	if strings.HasSuffix(name, "_test.go") {
		return true
	}
	if strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py") {
		return true
	}
	if name == "conftest.py" {
		return true
	}
	if strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
		return true
	}
	for _, marker := range testPathMarkers {
		if strings.HasPrefix(p, marker) || strings.Contains(p, "/"+marker) {
			return true
		}
	}
	return false
}

// IsGeneratedPath flags build artifacts by extension convention. Content
// sniffing for Go generated headers happens in the extractor.
func IsGeneratedPath(relPath string) bool {
	name := path.Base(relPath)
	switch {
	case strings.HasSuffix(name, ".pb.go"),
		strings.HasSuffix(name, ".pb.gw.go"),
		strings.HasSuffix(name, ".g.dart"),
		strings.HasSuffix(name, ".freezed.dart"),
		strings.HasSuffix(name, ".min.js"),
		strings.HasSuffix(name, ".d.ts") && strings.Contains(relPath, "/dist/"):
		return true
	}
	return strings.Contains(relPath, ".svelte-kit/") ||
		strings.Contains(relPath, "generated_plugin_registrant")
}
