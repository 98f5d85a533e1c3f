package analyzer

import (
	"regexp"
	"strings"
)

// crateImport is a Rust use whose first segment is crate, super, or self,
// kept for fuzzy matching against target files.
type crateImport struct {
	rawPath  string   // verbatim use path
	symbols  []string // leaf names bound by the use
	importer string   // importing file path
}

var wordTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// rustFuzzyMatch decides whether a crate-internal use path refers to the
// given file. For `use crate::a::b::Name` the middle segments join to a/b
// and the file matches on …/a/b.rs, …/a/b/mod.rs, …/a/b/lib.rs, or a stem
// equal to the last middle segment. A token fallback accepts nested brace
// forms when both the symbol and the file's stem appear as whole words in
// the raw path.
func rustFuzzyMatch(imp crateImport, symbol, filePath string) bool {
	if !containsSymbol(imp.symbols, symbol) && !containsWordToken(imp.rawPath, symbol) {
		return false
	}

	normalized := strings.ReplaceAll(filePath, "\\", "/")
	stem := fileStem(normalized)

	middle := middleSegments(imp.rawPath, symbol)
	if len(middle) > 0 {
		joined := strings.Join(middle, "/")
		if strings.Contains(normalized, joined+".rs") ||
			strings.Contains(normalized, joined+"/mod.rs") ||
			strings.Contains(normalized, joined+"/lib.rs") {
			return true
		}
		if stem == middle[len(middle)-1] {
			return true
		}
	}

	// Nested brace imports (use crate::{…, m::{…, Name}, …};) defeat the
	// segment parse; accept when both the symbol and the module stem are
	// whole-word tokens of the raw path.
	if containsWordToken(imp.rawPath, symbol) && containsWordToken(imp.rawPath, stem) {
		return true
	}

	return false
}

// middleSegments strips the crate/super/self prefix and the final symbol
// from a use path: crate::a::b::Name → [a, b].
func middleSegments(rawPath, symbol string) []string {
	p := rawPath
	for _, prefix := range []string{"crate::", "super::", "self::"} {
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}
	// Brace groups are handled by the token fallback.
	if strings.ContainsAny(p, "{}") {
		return nil
	}
	segs := strings.Split(p, "::")
	if len(segs) == 0 {
		return nil
	}
	last := segs[len(segs)-1]
	if last == symbol || strings.HasPrefix(last, symbol+" ") {
		segs = segs[:len(segs)-1]
	}
	return segs
}

func fileStem(p string) string {
	base := p
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".rs")
	if base == "mod" || base == "lib" {
		// mod.rs and lib.rs take their directory's name.
		dir := strings.TrimSuffix(p, "/"+base+".rs")
		if idx := strings.LastIndex(dir, "/"); idx >= 0 {
			dir = dir[idx+1:]
		}
		return dir
	}
	return base
}

func containsSymbol(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

func containsWordToken(raw, token string) bool {
	if token == "" {
		return false
	}
	for _, w := range wordTokenRe.FindAllString(raw, -1) {
		if w == token {
			return true
		}
	}
	return false
}
