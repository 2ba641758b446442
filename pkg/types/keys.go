package types

import (
	"path"
	"strings"
)

// DataKey identifies a single resource or asset unambiguously within a
// parsed partition. The merge coordinator never inspects a key's internal
// shape; it only routes based on which iteration (asset vs. resource)
// produced it. String() is the canonical form used for ordering and for
// the cache blob.
type DataKey interface {
	String() string
}

// ResourceName is the fully-qualified name of a typed resource:
// resource type, optional qualifiers, and the resource's own name.
// Example canonical forms: "string/app_name", "layout-land/main".
type ResourceName struct {
	// Type is the resource type directory stem, e.g. "string", "layout".
	Type string
	// Qualifiers restrict the configuration, e.g. "es", "land". Empty
	// means the default configuration.
	Qualifiers string
	// Name is the resource's own name, without extension.
	Name string
}

func (r ResourceName) String() string {
	if r.Qualifiers == "" {
		return r.Type + "/" + r.Name
	}
	return r.Type + "-" + r.Qualifiers + "/" + r.Name
}

// TypeDirectory returns the res/ subdirectory this resource belongs in,
// e.g. "values-es" or "layout".
func (r ResourceName) TypeDirectory() string {
	if r.Qualifiers == "" {
		return r.Type
	}
	return r.Type + "-" + r.Qualifiers
}

// ParseResourceName parses the canonical "type[-qualifiers]/name" form.
func ParseResourceName(s string) (ResourceName, bool) {
	dir, name, ok := strings.Cut(s, "/")
	if !ok || dir == "" || name == "" {
		return ResourceName{}, false
	}
	typ, qualifiers, _ := strings.Cut(dir, "-")
	return ResourceName{Type: typ, Qualifiers: qualifiers, Name: name}, true
}

// AssetPath is the relative path of an asset below the assets directory.
type AssetPath struct {
	Path string
}

func (a AssetPath) String() string {
	return path.Clean(a.Path)
}
