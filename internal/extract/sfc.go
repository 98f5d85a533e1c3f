package extract

import (
	"regexp"
	"strings"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/pkg/types"
)

// Compiled once; SFC files are scanned per block, never per line.
var (
	sfcScriptRe = regexp.MustCompile(`(?s)<script[^>]*>(.*?)</script>`)

	// Template identifier sources: mustache calls, event handlers,
	// directives, and capitalized component tags.
	sfcMustacheCallRe = regexp.MustCompile(`\{[^}]*?([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)
	sfcSvelteEventRe  = regexp.MustCompile(`on:[a-zA-Z]+\s*=\s*\{\s*([A-Za-z_$][A-Za-z0-9_$]*)`)
	sfcVueEventRe     = regexp.MustCompile(`@[a-zA-Z.-]+\s*=\s*"([A-Za-z_$][A-Za-z0-9_$]*)`)
	sfcDirectiveRe    = regexp.MustCompile(`(?:use|transition|in|out|animate):([A-Za-z_$][A-Za-z0-9_$]*)`)
	sfcBindRe         = regexp.MustCompile(`bind:[a-zA-Z]+\s*=\s*\{\s*([A-Za-z_$][A-Za-z0-9_$]*)`)
	sfcComponentTagRe = regexp.MustCompile(`<([A-Z][A-Za-z0-9_]*)[\s/>]`)
	sfcVModelRe       = regexp.MustCompile(`v-model\s*=\s*"([A-Za-z_$][A-Za-z0-9_$]*)"`)
)

// sfcTemplateKeywords are control-flow words that look like identifiers in
// template expressions.
var sfcTemplateKeywords = map[string]bool{
	"if": true, "else": true, "each": true, "await": true, "then": true,
	"catch": true, "key": true, "html": true, "debug": true, "const": true,
	"true": true, "false": true, "null": true, "undefined": true,
	"typeof": true, "new": true, "in": true, "of": true,
}

// extractSFC handles .svelte and .vue single-file components: every script
// block is lifted out and parsed as TypeScript, then the remaining markup
// is scanned for identifier uses so symbols referenced only in templates
// are not reported dead.
func (e *Extractor) extractSFC(fa *types.FileAnalysis, content []byte, lang types.Language) {
	script, rest := splitSFC(content)
	if len(strings.TrimSpace(script)) > 0 {
		tree := e.parse(parser.GrammarTS, []byte(script), fa.Path)
		if tree != nil {
			v := &tsVisitor{ex: e, fa: fa, src: []byte(script), consts: map[string]string{}}
			v.collectConsts(tree.RootNode())
			v.walk(tree.RootNode())
			tree.Close()
		}
	}
	scanTemplate(fa, rest)
}

// splitSFC returns the concatenated script blocks (padded with blank lines
// so node positions match the original file) and the markup with scripts
// blanked out.
func splitSFC(content []byte) (script string, rest string) {
	text := string(content)
	var sb strings.Builder
	outLine := 0

	matches := sfcScriptRe.FindAllStringSubmatchIndex(text, -1)
	restBytes := []byte(text)
	for _, m := range matches {
		bodyStart, bodyEnd := m[2], m[3]
		startLine := strings.Count(text[:bodyStart], "\n")
		for outLine < startLine {
			sb.WriteByte('\n')
			outLine++
		}
		body := text[bodyStart:bodyEnd]
		sb.WriteString(body)
		outLine += strings.Count(body, "\n")

		// Blank the script region in the markup copy, preserving newlines.
		for i := m[0]; i < m[1]; i++ {
			if restBytes[i] != '\n' {
				restBytes[i] = ' '
			}
		}
	}
	return sb.String(), string(restBytes)
}

// scanTemplate adds markup identifier references to local_uses.
func scanTemplate(fa *types.FileAnalysis, markup string) {
	add := func(matches [][]string) {
		for _, m := range matches {
			name := m[1]
			if !sfcTemplateKeywords[name] {
				fa.AddLocalUse(name)
			}
		}
	}
	add(sfcMustacheCallRe.FindAllStringSubmatch(markup, -1))
	add(sfcSvelteEventRe.FindAllStringSubmatch(markup, -1))
	add(sfcVueEventRe.FindAllStringSubmatch(markup, -1))
	add(sfcDirectiveRe.FindAllStringSubmatch(markup, -1))
	add(sfcBindRe.FindAllStringSubmatch(markup, -1))
	add(sfcComponentTagRe.FindAllStringSubmatch(markup, -1))
	add(sfcVModelRe.FindAllStringSubmatch(markup, -1))
}
