package engine

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// ContainerKind identifies a package flavour. Every kind is rewritten by the
// same algorithm; only its name and extension differ.
type ContainerKind struct {
	Name      string
	Extension string // lowercased, with leading dot
	Label     string
}

var (
	WordPackage  = ContainerKind{Name: "word", Extension: ".docx", Label: "Word package"}
	SlidePackage = ContainerKind{Name: "slide", Extension: ".pptx", Label: "Slide package"}
)

func (k ContainerKind) String() string {
	return k.Name
}

// Registry maps file extensions to container kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]ContainerKind
}

func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]ContainerKind),
	}
}

// DefaultRegistry returns a registry with the Word and Slide package kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WordPackage)
	r.Register(SlidePackage)
	return r
}

func (r *Registry) Register(kind ContainerKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[strings.ToLower(kind.Extension)] = kind
}

// Resolve returns the container kind for path based on its extension.
func (r *Registry) Resolve(path string) (ContainerKind, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	kind, ok := r.kinds[ext]
	available := r.available()
	r.mu.RUnlock()
	if !ok {
		return ContainerKind{}, &UnsupportedContainerError{Path: path, Extension: ext, Available: available}
	}
	return kind, nil
}

// Supports reports whether kind is registered under its extension.
func (r *Registry) Supports(kind ContainerKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registered, ok := r.kinds[strings.ToLower(kind.Extension)]
	return ok && registered == kind
}

func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	exts := lo.Keys(r.kinds)
	slices.Sort(exts)
	return exts
}
