// Package build implements the build driver: compiling one or many
// sources into an executable via an external make-style runner, with
// per-language descriptors selected by source extension.
package build

import "fmt"

// Descriptor is a closed sum over the handful of language shapes this
// judge actually needs: a natively linked binary, and an interpreted
// target that ships as an archive plus an interpreter invocation.
type Descriptor interface {
	// Name identifies the language in diagnostics ("cpp", "python", ...).
	Name() string
	// SourceExtensions lists the extensions this language claims.
	SourceExtensions() []string
	// ExecutableExtension is empty for native binaries, non-empty for
	// interpreted targets (e.g. ".pyz" for a zipapp bundle).
	ExecutableExtension() string
	// Makefile returns the path to the language-specific makefile used
	// for the given mode ("wildcard" or "target").
	Makefile(mode string) string
	// Env returns the make invocation's environment additions (compile
	// flags, include paths, and on Darwin the stack-size linker flag).
	Env(stackMiB int, includePath string) map[string]string
	// ExecutionCommand returns the argv needed to run the built artifact
	// (just the binary, or an interpreter + archive for bytecode targets).
	ExecutionCommand(base string, stackMiB int) []string
}

// claims reports whether every extension in sources is in descriptor's
// source extension set. This is the sole selection rule for both
// wildcard and target compiles: the first descriptor whose extension
// set contains all requested sources wins.
func claims(d Descriptor, extensions map[string]bool) bool {
	claimed := make(map[string]bool, len(d.SourceExtensions()))
	for _, ext := range d.SourceExtensions() {
		claimed[ext] = true
	}
	for ext := range extensions {
		if !claimed[ext] {
			return false
		}
	}
	return true
}

// Select returns the first registered descriptor that claims every
// extension present in sources.
func Select(descriptors []Descriptor, sources []string) (Descriptor, error) {
	extensions := make(map[string]bool, len(sources))
	for _, src := range sources {
		extensions[extOf(src)] = true
	}
	for _, d := range descriptors {
		if claims(d, extensions) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("build: no language descriptor claims sources %v", sources)
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
