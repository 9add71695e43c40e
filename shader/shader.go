// Package shader loads Blitzen's WGSL shader assets from a fixed on-disk
// path set. The core never compiles or generates shaders; it only reads
// them and hands the raw source to pipelinecache.
//
// There is deliberately no shader introspection here: no entry-point,
// workgroup-size or bind-group discovery parsed out of source. Blitzen's
// bind group layouts are fixed at compile time
// (descriptor.BuildGPUBufferLayout and friends) and its pipeline set is
// fixed (pipelinecache.Key), so none of that discovery machinery has a job
// to do; a Loader is only "read the file, return the source".
package shader

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is the root directory Blitzen looks for shader assets in.
const DefaultDir = "VulkanShaders"

// Source is a single loaded WGSL module plus the entry point name the
// caller already knows it wants (Blitzen's pipelines have one fixed entry
// point per stage, so there's nothing to parse out of the source).
type Source struct {
	Label      string
	Code       string
	EntryPoint string
}

// Loader reads WGSL source files from a fixed directory.
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir. An empty dir defaults to
// DefaultDir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultDir
	}
	return &Loader{dir: dir}
}

// Load reads <dir>/<name>.<stage>.wgsl and returns it as a Source with the
// given entry point. Load order across a pipeline's shaders is fixed by the
// caller (the renderer's registerPipelines sequence), not discovered here.
func (l *Loader) Load(name, stage, entryPoint string) (Source, error) {
	path := filepath.Join(l.dir, fmt.Sprintf("%s.%s.wgsl", name, stage))
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("shader: load %q: %w", path, err)
	}
	return Source{
		Label:      name + "." + stage,
		Code:       string(data),
		EntryPoint: entryPoint,
	}, nil
}
