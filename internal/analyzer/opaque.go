package analyzer

import (
	"sort"

	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

// OpaquePassthrough is a type only reachable through the signatures of its
// module's other exports: consumers handle values of T without ever naming
// it, which usually signals a leaky boundary.
type OpaquePassthrough struct {
	File     string   `json:"file"`
	TypeName string   `json:"type_name"`
	Line     int      `json:"line"`
	// Carriers are the imported functions whose signatures expose the type.
	Carriers []string `json:"carriers"`
}

// FindOpaquePassthroughs detects exported types that no consumer imports
// by name but that ride the signatures of imported functions.
func FindOpaquePassthroughs(snap *types.Snapshot) []OpaquePassthrough {
	sets := buildConsumerSets(snap)

	var out []OpaquePassthrough
	for _, fa := range snap.Files {
		if fa.IsTest {
			continue
		}
		key := resolver.KeyForPath(fa.Path).AsKey()

		// Signature type → importing carrier functions.
		carried := map[string][]string{}
		for _, su := range fa.SignatureUses {
			if sets.usedExports[key][su.Function] {
				carried[su.TypeName] = append(carried[su.TypeName], su.Function)
			}
		}
		if len(carried) == 0 {
			continue
		}

		for _, e := range fa.Exports {
			if e.Kind != "type" && e.Kind != "interface" && e.Kind != "struct" && e.Kind != "enum" {
				continue
			}
			if sets.usedExports[key][e.Name] || sets.usedExports[key]["*"] {
				continue
			}
			carriers, ok := carried[e.Name]
			if !ok {
				continue
			}
			seen := map[string]bool{}
			var unique []string
			for _, c := range carriers {
				if !seen[c] {
					seen[c] = true
					unique = append(unique, c)
				}
			}
			sort.Strings(unique)
			out = append(out, OpaquePassthrough{
				File:     fa.Path,
				TypeName: e.Name,
				Line:     e.Line,
				Carriers: unique,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].TypeName < out[j].TypeName
	})
	return out
}
