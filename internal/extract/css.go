package extract

import (
	"regexp"
	"strings"

	"github.com/loctree/loctree/pkg/types"
)

var (
	cssImportRe   = regexp.MustCompile(`@import\s+(?:url\()?["']([^"')]+)["']`)
	cssPositionRe = regexp.MustCompile(`position\s*:\s*([a-z-]+)`)
	cssZIndexRe   = regexp.MustCompile(`z-index\s*:\s*([^;}]+)`)
)

// extractCSS records @import edges and the layout layers (position and
// z-index declarations per selector) behind the layoutmap view. CSS has no
// tree-sitter grammar in our set; a block scanner is enough for the two
// properties we read.
func (e *Extractor) extractCSS(fa *types.FileAnalysis, content []byte) {
	text := string(content)

	for _, m := range cssImportRe.FindAllStringSubmatchIndex(text, -1) {
		spec := text[m[2]:m[3]]
		line := strings.Count(text[:m[0]], "\n") + 1
		entry := types.ImportEntry{
			Source:     spec,
			Kind:       types.ImportStatic,
			Line:       line,
			Resolution: types.ResolutionUnknown,
		}
		if e.resolver != nil {
			res := e.resolver.ResolveRelative(spec, fa.Path, []string{".css", ".scss"})
			entry.ResolvedPath = res.Path
			entry.Resolution = res.Resolution
		}
		fa.Imports = append(fa.Imports, entry)
	}

	// Selector blocks: selector text runs from the previous closing brace
	// (or start) to the opening brace.
	depth := 0
	selStart := 0
	var selector string
	blockStart := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ';':
			// Top-level at-rules (@import, @charset) end without a block.
			if depth == 0 {
				selStart = i + 1
			}
		case '{':
			depth++
			if depth == 1 {
				selector = strings.TrimSpace(text[selStart:i])
				blockStart = i
			}
		case '}':
			depth--
			if depth == 0 && blockStart >= 0 {
				body := text[blockStart:i]
				layer := types.CSSLayer{
					Selector: compactSelector(selector),
					Line:     strings.Count(text[:blockStart], "\n") + 1,
				}
				if m := cssPositionRe.FindStringSubmatch(body); m != nil {
					layer.Position = m[1]
				}
				if m := cssZIndexRe.FindStringSubmatch(body); m != nil {
					layer.ZIndex = strings.TrimSpace(m[1])
				}
				if layer.Position != "" || layer.ZIndex != "" {
					fa.CSSLayers = append(fa.CSSLayers, layer)
				}
				selStart = i + 1
				blockStart = -1
			}
		}
	}
}

// compactSelector collapses whitespace runs inside a selector.
func compactSelector(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
