package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/fsutil"
	"github.com/vk/nodesync/internal/typesys"
)

const fileExtension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
// Named types declared by the documents are added to its catalog.
type Loader struct {
	catalog *typesys.Catalog
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL document loader.
func NewLoader(catalog *typesys.Catalog) *Loader {
	return &Loader{catalog: catalog}
}

// Catalog returns the type catalog the loader resolves names against.
func (l *Loader) Catalog() *typesys.Catalog {
	return l.catalog
}

// Load parses every .hcl file found under the given paths and merges their
// blocks into one model. Blocks may reference types and nodes from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*fileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		root, err := decodeFile(file, hclFile)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return l.translate(ctx, roots)
}

// LoadSource parses a single in-memory document.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	root, err := decodeFile(filename, hclFile)
	if err != nil {
		return nil, err
	}
	return l.translate(ctx, []*fileRoot{root})
}

func decodeFile(name string, file *hcl.File) (*fileRoot, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}
	return &root, nil
}

// translate merges the decoded files. Types are declared first so that port
// type expressions can refer to them regardless of file order.
func (l *Loader) translate(ctx context.Context, roots []*fileRoot) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	m := &config.Model{}

	for _, root := range roots {
		for _, t := range root.Types {
			m.Types = append(m.Types, translateType(t))
		}
	}
	if err := config.DeclareTypes(l.catalog, m.Types); err != nil {
		return nil, err
	}

	seen := make(map[string]hcl.Range)
	for _, root := range roots {
		for _, n := range root.Nodes {
			if prev, dup := seen[n.ID]; dup {
				return nil, fmt.Errorf("%s: node '%s' already declared at %s", n.DeclRange, n.ID, prev)
			}
			seen[n.ID] = n.DeclRange
			def, err := l.translateNode(ctx, n)
			if err != nil {
				return nil, err
			}
			m.Nodes = append(m.Nodes, def)
		}
	}

	for _, root := range roots {
		for _, c := range root.Connections {
			def, err := translateConnection(c)
			if err != nil {
				return nil, err
			}
			m.Connections = append(m.Connections, def)
		}
	}

	logger.Debug("HCL loading complete.", "types", len(m.Types), "nodes", len(m.Nodes), "connections", len(m.Connections))
	return m, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated list
// of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != fileExtension {
				return nil, fmt.Errorf("%s is not an %s document", path, fileExtension)
			}
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, fileExtension)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return allFiles, nil
}
