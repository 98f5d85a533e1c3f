// Package resolver turns raw import specifiers into canonical repo-relative
// paths and gives every file a module key that survives extension
// differences and barrel indirection without collapsing languages.
package resolver

import (
	"strings"

	"github.com/loctree/loctree/pkg/types"
)

// LangFamily is the coarse language family of a module key. TS/JS/JSX
// variants collapse to one family so foo.tsx and foo.js compare equal;
// cross-language collisions stay distinct.
type LangFamily string

const (
	FamilyTS  LangFamily = "ts"
	FamilyRS  LangFamily = "rs"
	FamilyPY  LangFamily = "py"
	FamilyGO  LangFamily = "go"
	FamilyCSS LangFamily = "css"
)

// tsFamilyExts are stripped when normalizing a TS-family path, in the order
// they are probed during resolution.
var tsFamilyExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".svelte", ".vue"}

// ModuleKey is the canonical (path, lang) identity of a file.
type ModuleKey struct {
	Path string
	Lang LangFamily
}

// AsKey serializes the key as "<path>:<lang>".
func (k ModuleKey) AsKey() string {
	return k.Path + ":" + string(k.Lang)
}

// FromKey parses a serialized key. The language tag follows the final colon
// so paths containing colons round-trip.
func FromKey(s string) ModuleKey {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return ModuleKey{Path: s, Lang: FamilyTS}
	}
	return ModuleKey{Path: s[:idx], Lang: LangFamily(s[idx+1:])}
}

// FamilyForLanguage maps a file language tag to its key family.
func FamilyForLanguage(lang types.Language) LangFamily {
	switch lang {
	case types.LangRust:
		return FamilyRS
	case types.LangPython:
		return FamilyPY
	case types.LangGo:
		return FamilyGO
	case types.LangCSS:
		return FamilyCSS
	default:
		return FamilyTS
	}
}

// FamilyForPath infers the key family from a path's extension.
func FamilyForPath(path string) LangFamily {
	switch {
	case strings.HasSuffix(path, ".rs"):
		return FamilyRS
	case strings.HasSuffix(path, ".py"), strings.HasSuffix(path, ".pyi"):
		return FamilyPY
	case strings.HasSuffix(path, ".go"):
		return FamilyGO
	case strings.HasSuffix(path, ".css"), strings.HasSuffix(path, ".scss"):
		return FamilyCSS
	default:
		return FamilyTS
	}
}

// KeyForPath computes the module key for a repo-relative file path or an
// unresolved specifier. The family's canonical extension and a trailing
// /index (or /mod for Rust, /__init__ for Python) are stripped.
func KeyForPath(path string) ModuleKey {
	p := strings.ReplaceAll(path, "\\", "/")
	family := FamilyForPath(p)

	switch family {
	case FamilyRS:
		p = strings.TrimSuffix(p, ".rs")
		p = strings.TrimSuffix(p, "/mod")
	case FamilyPY:
		p = strings.TrimSuffix(p, ".pyi")
		p = strings.TrimSuffix(p, ".py")
		p = strings.TrimSuffix(p, "/__init__")
	case FamilyGO:
		p = strings.TrimSuffix(p, ".go")
	case FamilyCSS:
		p = strings.TrimSuffix(p, ".css")
		p = strings.TrimSuffix(p, ".scss")
	default:
		// The .d.ts declaration suffix collapses onto its implementation.
		p = strings.TrimSuffix(p, ".d.ts")
		for _, ext := range tsFamilyExts {
			if strings.HasSuffix(p, ext) {
				p = strings.TrimSuffix(p, ext)
				break
			}
		}
		p = strings.TrimSuffix(p, "/index")
	}

	return ModuleKey{Path: p, Lang: family}
}
