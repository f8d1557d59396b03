package scene

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// Builder constructs a fresh, built scene, optionally overriding its camera
type Builder func(cameraOverrides ...renderer.CameraConfig) *Scene

// SceneInfo describes a registered scene
type SceneInfo struct {
	Name        string // Lookup key, e.g. "default"
	DisplayName string // Human readable name
	Description string
}

type registration struct {
	info    SceneInfo
	builder Builder
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

func init() {
	Register("default", "Pink mirror, glass and red diffuse spheres on a ground sphere", NewDefaultScene)
	Register("random", "Grid of small random spheres around three large ones", NewRandomScene)
	Register("empty", "No primitives, only the sky gradient", NewEmptyScene)
}

// Register adds a named scene builder. It panics if the name is empty or
// already taken.
func Register(name, description string, builder Builder) {
	if name == "" || builder == nil {
		panic("scene: Register requires a name and a builder")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("scene: %q registered twice", name))
	}
	registry[name] = registration{
		info: SceneInfo{
			Name:        name,
			DisplayName: titleCase(name),
			Description: description,
		},
		builder: builder,
	}
}

// Lookup builds the scene registered under name
func Lookup(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	registryMu.RLock()
	reg, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return reg.builder(cameraOverrides...), nil
}

// Names returns the registered scene names in sorted order
func Names() []string {
	infos := List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// List returns every registered scene sorted by name
func List() []SceneInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	infos := make([]SceneInfo, 0, len(registry))
	for _, reg := range registry {
		infos = append(infos, reg.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// titleCase converts a name-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
