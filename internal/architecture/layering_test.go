package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "dsaboost/internal/modules/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

// forbidden lists, per layer, the same-module layers it must not import.
var forbidden = map[string][]string{
	"adapter/in":  {"adapter/out", "usecase", "service", "port/out"},
	"adapter/out": {"adapter/in", "usecase"},
	"usecase":     {"adapter/in", "adapter/out"},
	"service":     {"adapter/in", "adapter/out", "usecase", "port/in"},
	"domain":      {"adapter/in", "adapter/out", "usecase", "service", "port/in", "port/out", "dto"},
	"dto":         {"adapter/in", "adapter/out", "usecase", "service", "port/in", "port/out", "domain"},
}

type importRef struct {
	module string
	layer  string
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "modules"), func(file string, imp importRef) {
		module, layer := locate(file)
		if module == "" || layer == "" {
			return
		}
		if imp.module != module {
			if imp.layer != "port/in" && imp.layer != "dto" {
				t.Errorf("%s (%s/%s) reaches into %s/%s", file, module, layer, imp.module, imp.layer)
			}
			return
		}
		for _, banned := range forbidden[layer] {
			if imp.layer == banned {
				t.Errorf("%s (%s) imports %s of its own module", file, layer, banned)
			}
		}
	})
}

// Outer surfaces talk to modules only through bootstrap-built handlers, so
// the only module packages they may name are dto.
func TestSurfacesImportOnlyDTOs(t *testing.T) {
	t.Parallel()
	for _, dir := range []string{filepath.Join("..", "ui"), filepath.Join("..", "..", "cmd")} {
		walkImports(t, dir, func(file string, imp importRef) {
			if imp.layer != "dto" {
				t.Errorf("%s imports %s/%s", file, imp.module, imp.layer)
			}
		})
	}
}

func walkImports(t *testing.T, root string, visit func(file string, imp importRef)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range node.Imports {
			importPath := strings.Trim(spec.Path.Value, `"`)
			rest, ok := strings.CutPrefix(importPath, modulesPrefix)
			if !ok {
				continue
			}
			module, sub, _ := strings.Cut(rest, "/")
			visit(filepath.ToSlash(path), importRef{module: module, layer: layerOf(sub)})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

// locate returns the module and layer a source file belongs to.
func locate(file string) (string, string) {
	_, rest, ok := strings.Cut(file, "modules/")
	if !ok {
		return "", ""
	}
	module, sub, _ := strings.Cut(rest, "/")
	return module, layerOf(sub)
}

func layerOf(sub string) string {
	for _, layer := range layers {
		if sub == layer || strings.HasPrefix(sub, layer+"/") {
			return layer
		}
	}
	return ""
}
