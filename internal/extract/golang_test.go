package extract

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestGoExportsAndUses(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `package store

import (
	"fmt"
	"strings"
)

const MaxRetries = 3

var internal = 1

type Record struct {
	Name string
}

func Open(name string) (*Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("empty name")
	}
	return &Record{Name: name}, nil
}

func helper() {}
`
	fa := ex.Extract([]byte(src), "store/store.go", types.LangGo)

	exports := map[string]string{}
	for _, e := range fa.Exports {
		exports[e.Name] = e.Kind
	}
	if exports["MaxRetries"] != "const" || exports["Record"] != "type" || exports["Open"] != "function" {
		t.Errorf("exports = %+v", exports)
	}
	if _, ok := exports["internal"]; ok {
		t.Error("unexported var leaked")
	}
	if _, ok := exports["helper"]; ok {
		t.Error("unexported func leaked")
	}

	if len(fa.Imports) != 2 || fa.Imports[0].Source != "fmt" {
		t.Errorf("imports = %+v", fa.Imports)
	}

	// Calls and type references pool into local uses for package-scoped
	// reasoning.
	if fa.LocalUses["TrimSpace"] == 0 || fa.LocalUses["Errorf"] == 0 {
		t.Errorf("local uses = %+v", fa.LocalUses)
	}

	// Branching pushes complexity above the baseline.
	if fa.CyclomaticMax < 2 {
		t.Errorf("cyclomatic max = %d, want >= 2", fa.CyclomaticMax)
	}
}

func TestGoGeneratedDetection(t *testing.T) {
	ex := newTestExtractor(t, nil)
	fa := ex.Extract([]byte("package pb\n"), "api/service.pb.go", types.LangGo)
	if !fa.IsGenerated {
		t.Error("protobuf output not marked generated")
	}

	fa = ex.Extract([]byte("// Code generated by mockgen. DO NOT EDIT.\npackage mocks\n"), "mocks/store.go", types.LangGo)
	if !fa.IsGenerated {
		t.Error("generated header not detected")
	}
}
