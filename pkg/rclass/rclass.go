// Package rclass generates the resource symbol artifact: an R.txt-style
// table assigning a stable id to every merged resource, headed by the
// application package name. Assets never appear here; only resources
// have symbols.
package rclass

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/resmerge/pkg/errors"
	"github.com/arthur-debert/resmerge/pkg/logging"
	"github.com/arthur-debert/resmerge/pkg/types"
)

// packageIDBase is the high byte shared by all generated ids, matching
// the conventional application package id space.
const packageIDBase = 0x7f000000

// ClassWriter collects resource symbols and writes the symbol table on
// Flush. Symbols are deduplicated by (type, name); since the coordinator
// dispatches primary entries first, the primary declaration claims the
// slot when a transitive one shares its name.
type ClassWriter struct {
	fs          types.FS
	packageName string
	outPath     string
	logger      zerolog.Logger

	seen    map[string]bool
	symbols []types.ResourceName
}

// New creates a class writer that emits to outPath for the given
// package name.
func New(fsys types.FS, packageName, outPath string) *ClassWriter {
	return &ClassWriter{
		fs:          fsys,
		packageName: packageName,
		outPath:     outPath,
		logger:      logging.GetLogger("rclass"),
		seen:        make(map[string]bool),
	}
}

// NewFromManifest reads the application package name from the manifest's
// root package attribute. The manifest is otherwise untouched.
func NewFromManifest(fsys types.FS, manifest, outPath string) (*ClassWriter, error) {
	data, err := fsys.ReadFile(manifest)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read manifest %s", manifest)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "malformed manifest %s", manifest)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "manifest %s has no root element", manifest)
	}
	pkg := root.SelectAttrValue("package", "")
	if pkg == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "manifest %s declares no package", manifest)
	}

	return New(fsys, pkg, outPath), nil
}

// WriteResourceSymbol records one resource's symbol contribution. The
// value is unused today; it is part of the signature so styleable-like
// resources can contribute child symbols later.
func (c *ClassWriter) WriteResourceSymbol(key types.ResourceName, res types.DataResource) error {
	slot := key.Type + "/" + key.Name
	if c.seen[slot] {
		return nil
	}
	c.seen[slot] = true
	c.symbols = append(c.symbols, key)
	return nil
}

// Flush assigns ids and writes the symbol table. Ids are deterministic:
// types are numbered in sorted order, entries numbered in sorted order
// within their type.
func (c *ClassWriter) Flush() error {
	sorted := make([]types.ResourceName, len(c.symbols))
	copy(sorted, c.symbols)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Name < sorted[j].Name
	})

	typeIndex := make(map[string]int)
	for _, s := range sorted {
		if _, ok := typeIndex[s.Type]; !ok {
			typeIndex[s.Type] = len(typeIndex)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# R symbols for %s\n", c.packageName)
	entryIndex := make(map[string]int)
	for _, s := range sorted {
		idx := entryIndex[s.Type]
		entryIndex[s.Type] = idx + 1
		id := packageIDBase | (typeIndex[s.Type]+1)<<16 | idx
		fmt.Fprintf(&b, "int %s %s 0x%08x\n", s.Type, s.Name, id)
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.outPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(c.outPath))
	}
	if err := c.fs.WriteFile(c.outPath, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write symbol table %s", c.outPath)
	}

	c.logger.Debug().
		Str("package", c.packageName).
		Int("symbols", len(sorted)).
		Str("path", c.outPath).
		Msg("Symbol table written")
	return nil
}

// PackageName returns the package the symbol table is generated for.
func (c *ClassWriter) PackageName() string {
	return c.packageName
}
