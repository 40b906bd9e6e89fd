package hclhints

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/entityevent/hydrate-go/hydrate"
)

var ErrNoDeclarationFiles = errors.New("no hcl declaration files supplied")
var ErrParsingDeclarationsFailed = errors.New("parsing hcl declarations failed")

type hclFile struct {
	Renderers []*hclRenderer `hcl:"renderer,block"`
}

type hclRenderer struct {
	Source      string     `hcl:"source,label"`
	RenderGroup string     `hcl:"render_group,label"`
	Hints       []*hclHint `hcl:"hint,block"`
}

type hclHint struct {
	ContextKey string   `hcl:"context_key,label"`
	Type       string   `hcl:"type"`
	Direct     []string `hcl:"direct,optional"`
	Transitive []string `hcl:"transitive,optional"`
}

// Registry implements hydrate.HintSource from parsed HCL declaration files.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	declarations []hydrate.HintDeclaration
}

// Load parses the given .hcl files into a Registry. Later files do not
// override earlier ones, duplicate (source, render group) pairs simply
// contribute separate declarations and merge downstream.
func Load(paths ...string) (*Registry, error) {
	if len(paths) == 0 {
		return nil, ErrNoDeclarationFiles
	}

	parser := hclparse.NewParser()
	registry := &Registry{}

	for _, path := range paths {
		declarations, err := parseFile(parser, path)
		if err != nil {
			return nil, err
		}

		registry.declarations = append(registry.declarations, declarations...)
	}

	return registry, nil
}

// LoadDir parses every .hcl file found under dir, recursively.
func LoadDir(dir string) (*Registry, error) {
	var paths []string

	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() && strings.HasSuffix(path, ".hcl") {
			paths = append(paths, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, errors.Join(ErrParsingDeclarationsFailed, walkErr)
	}

	slices.Sort(paths)

	return Load(paths...)
}

func parseFile(parser *hclparse.Parser, path string) ([]hydrate.HintDeclaration, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParsingDeclarationsFailed, fmt.Errorf("parse %s: %w", path, diags))
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParsingDeclarationsFailed, fmt.Errorf("decode %s: %w", path, diags))
	}

	declarations := make([]hydrate.HintDeclaration, 0, len(parsed.Renderers))

	for _, renderer := range parsed.Renderers {
		hints := make(map[hydrate.ContextKeyString]hydrate.HintSpec, len(renderer.Hints))
		for _, hint := range renderer.Hints {
			hints[hint.ContextKey] = hydrate.HintSpec{
				TypeName:            hint.Type,
				DirectEagerLoad:     hint.Direct,
				TransitiveEagerLoad: hint.Transitive,
			}
		}

		declarations = append(declarations, hydrate.HintDeclaration{
			Source:      renderer.Source,
			RenderGroup: renderer.RenderGroup,
			Hints:       hints,
		})
	}

	return declarations, nil
}

// FetchDeclarations implements hydrate.HintSource by filtering the parsed
// declarations down to the requested sources and render groups.
func (r *Registry) FetchDeclarations(
	_ context.Context,
	sources []hydrate.SourceString,
	renderGroups []hydrate.RenderGroupString,
) ([]hydrate.HintDeclaration, error) {

	var matching []hydrate.HintDeclaration

	for _, declaration := range r.declarations {
		if slices.Contains(sources, declaration.Source) && slices.Contains(renderGroups, declaration.RenderGroup) {
			matching = append(matching, declaration)
		}
	}

	return matching, nil
}
