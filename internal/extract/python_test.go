package extract

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestPythonImports(t *testing.T) {
	ex := newTestExtractor(t, []string{"mypkg/__init__.py", "mypkg/models.py", "main.py"})
	src := `import os
import mypkg.models as models
from mypkg.models import (
    User,
    Role as UserRole,
)
from typing import TYPE_CHECKING

if TYPE_CHECKING:
    from mypkg.models import Heavy

def lazy():
    from mypkg import models as m
`
	fa := ex.Extract([]byte(src), "main.py", types.LangPython)

	bySource := map[string][]types.ImportEntry{}
	for _, imp := range fa.Imports {
		bySource[imp.Source] = append(bySource[imp.Source], imp)
	}

	if imps := bySource["os"]; len(imps) != 1 || imps[0].Resolution != types.ResolutionStdlib {
		t.Errorf("os import = %+v", imps)
	}
	if imps := bySource["mypkg.models"]; len(imps) < 2 {
		t.Fatalf("mypkg.models imports = %+v", imps)
	} else {
		if imps[0].ResolvedPath != "mypkg/models.py" {
			t.Errorf("resolution = %+v", imps[0])
		}
	}

	// from-import symbols with alias.
	var fromImp *types.ImportEntry
	for i := range fa.Imports {
		if len(fa.Imports[i].Symbols) == 2 {
			fromImp = &fa.Imports[i]
		}
	}
	if fromImp == nil {
		t.Fatalf("parenthesized from-import lost: %+v", fa.Imports)
	}
	if fromImp.Symbols[1].Name != "Role" || fromImp.Symbols[1].Alias != "UserRole" {
		t.Errorf("aliased from-import = %+v", fromImp.Symbols)
	}

	// TYPE_CHECKING and lazy flags.
	var sawTypeChecking, sawLazy bool
	for _, imp := range fa.Imports {
		if imp.IsTypeChecking {
			sawTypeChecking = true
		}
		if imp.IsLazy {
			sawLazy = true
		}
	}
	if !sawTypeChecking || !sawLazy {
		t.Errorf("flags: type_checking=%v lazy=%v", sawTypeChecking, sawLazy)
	}
}

func TestPythonExportsAndAll(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `__all__ = ["APRIL", "Calendar"]

APRIL = 4

def month_name(n: int) -> str:
    return ""

class Calendar:
    def _private(self):
        pass
`
	fa := ex.Extract([]byte(src), "Lib/calendar.py", types.LangPython)

	kinds := map[string]string{}
	for _, e := range fa.Exports {
		kinds[e.Name+"/"+e.Kind] = e.Kind
	}
	if _, ok := kinds["APRIL/__all__"]; !ok {
		t.Errorf("__all__ entries missing: %+v", fa.Exports)
	}
	if _, ok := kinds["month_name/function"]; !ok {
		t.Errorf("top-level def missing: %+v", fa.Exports)
	}
	if _, ok := kinds["Calendar/class"]; !ok {
		t.Errorf("top-level class missing: %+v", fa.Exports)
	}
	// Method inside the class is not a module export.
	if _, ok := kinds["_private/function"]; ok {
		t.Errorf("method leaked as export: %+v", fa.Exports)
	}
}

func TestPythonInitReexports(t *testing.T) {
	ex := newTestExtractor(t, []string{"pkg/__init__.py", "pkg/mod.py"})
	src := `from .mod import Foo as Bar
from .mod import *
`
	fa := ex.Extract([]byte(src), "pkg/__init__.py", types.LangPython)

	if len(fa.Reexports) != 2 {
		t.Fatalf("reexports = %+v", fa.Reexports)
	}
	if fa.Reexports[0].Kind != types.ReexportNamed ||
		fa.Reexports[0].Names[0].Original != "Foo" ||
		fa.Reexports[0].Names[0].Exported != "Bar" {
		t.Errorf("named = %+v", fa.Reexports[0])
	}
	if fa.Reexports[1].Kind != types.ReexportStar {
		t.Errorf("star = %+v", fa.Reexports[1])
	}
	if fa.Reexports[0].Resolved != "pkg/mod.py" {
		t.Errorf("resolved = %+v", fa.Reexports[0])
	}
}

func TestPythonDecorators(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `import pytest

@pytest.fixture
def db():
    return None

@app.get("/users/{id}")
def get_user(id: int):
    return id

@app.route("/legacy", methods=["POST"])
def legacy():
    pass
`
	fa := ex.Extract([]byte(src), "api.py", types.LangPython)

	if len(fa.PytestFixtures) != 1 || fa.PytestFixtures[0] != "db" {
		t.Errorf("fixtures = %+v", fa.PytestFixtures)
	}
	if len(fa.Routes) != 2 {
		t.Fatalf("routes = %+v", fa.Routes)
	}
	if fa.Routes[0].Method != "GET" || fa.Routes[0].Path != "/users/{id}" {
		t.Errorf("route 0 = %+v", fa.Routes[0])
	}
	if fa.Routes[1].Method != "POST" || fa.Routes[1].Path != "/legacy" {
		t.Errorf("route 1 = %+v", fa.Routes[1])
	}
	// Decorated defs are self-used: the framework calls them.
	if fa.LocalUses["get_user"] == 0 || fa.LocalUses["db"] == 0 {
		t.Errorf("decorated defs not marked used: %+v", fa.LocalUses)
	}
}

func TestPythonDynamicConstructs(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `import importlib
import sys

mod = importlib.import_module("plugins.extra")
other = __import__("plugins.legacy")
sys.modules["virtual"] = mod
exec(f"def {name}(): pass")
`
	fa := ex.Extract([]byte(src), "loader.py", types.LangPython)

	if len(fa.DynamicImports) != 2 {
		t.Errorf("dynamic imports = %+v", fa.DynamicImports)
	}
	// Dynamic imports never become ImportEntry records.
	for _, imp := range fa.Imports {
		if imp.Source == "plugins.extra" {
			t.Errorf("importlib call leaked into imports: %+v", imp)
		}
	}
	if len(fa.SysModulesInjections) != 1 || fa.SysModulesInjections[0] != "virtual" {
		t.Errorf("sys.modules injections = %+v", fa.SysModulesInjections)
	}
	if len(fa.DynamicExecTemplates) != 1 {
		t.Errorf("exec templates = %+v", fa.DynamicExecTemplates)
	}
}

func TestPythonRaceIndicators(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `cache = {}
items = []

async def handler(x):
    items.append(x)
    cache.update({"k": x})
`
	fa := ex.Extract([]byte(src), "srv.py", types.LangPython)
	if len(fa.PyRaceIndicators) != 2 {
		t.Errorf("race indicators = %+v", fa.PyRaceIndicators)
	}
}
