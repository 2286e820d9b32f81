package devspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/dev-compose/internal/document"
	"github.com/shinji-kodama/dev-compose/internal/model"
	"github.com/shinji-kodama/dev-compose/internal/schema"
)

// DefaultFile is the document read when no --file is given.
const DefaultFile = "dev.yml"

// LocalEnvFile is appended to every service's env_file list when it exists
// beside the document.
const LocalEnvFile = "local.env"

// Document is a loaded DevSpec together with where it came from.
type Document struct {
	// Path is the absolute path of the document.
	Path string

	// Dir is the directory holding the document. Relative references in
	// the document resolve against it, and it is the compose project
	// directory.
	Dir string

	// Spec is the validated model.
	Spec *DevSpec

	// EnvFiles are extra env files injected into every service.
	EnvFiles []string

	// Overrides lists the local override documents merged into Spec.
	Overrides []string
}

// Load reads, validates and returns the document at path. A sibling
// "<name>.local<ext>" document, when present, is merged on top, and a
// sibling local.env is registered for injection into every service.
func Load(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDocumentNotFound,
			fmt.Sprintf("cannot resolve %s", path), err)
	}

	raw, err := readDocument(abs)
	if err != nil {
		return nil, err
	}
	spec, err := New(raw)
	if err != nil {
		return nil, invalidDocument(abs, err)
	}

	doc := &Document{Path: abs, Dir: filepath.Dir(abs), Spec: spec}

	override := LocalOverridePath(abs)
	if fileExists(override) {
		raw, err := readDocument(override)
		if err != nil {
			return nil, err
		}
		if err := spec.Import(raw, schema.Options{Merge: true}); err != nil {
			return nil, invalidDocument(override, err)
		}
		doc.Overrides = append(doc.Overrides, override)
	}

	if envFile := filepath.Join(doc.Dir, LocalEnvFile); fileExists(envFile) {
		doc.EnvFiles = append(doc.EnvFiles, envFile)
	}

	return doc, nil
}

// LocalOverridePath returns the override document path for path, e.g.
// "/p/dev.local.yml" for "/p/dev.yml".
func LocalOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// ProjectName is the compose project's display name: the base name of the
// document directory.
func (d *Document) ProjectName() string {
	return filepath.Base(d.Dir)
}

// ComposeModel returns the compose projection with EnvFiles injected.
func (d *Document) ComposeModel() *schema.Map {
	m := d.Spec.ComposeModel()
	InjectEnvFiles(m, d.EnvFiles)
	return m
}

// InjectEnvFiles appends files to the env_file list of every service in a
// compose projection. A missing env_file becomes a list, and a single
// string is promoted to a one-element list first. Services that are not
// maps, or whose env_file is neither, are left alone.
func InjectEnvFiles(composeModel *schema.Map, files []string) {
	if len(files) == 0 {
		return
	}
	v, _ := composeModel.Get("services")
	services, ok := v.(*schema.Map)
	if !ok {
		return
	}
	for _, name := range services.Keys() {
		sv, _ := services.Get(name)
		service, ok := sv.(*schema.Map)
		if !ok {
			continue
		}

		var list []any
		switch existing, _ := service.Get("env_file"); e := existing.(type) {
		case nil:
			list = []any{}
		case string:
			list = []any{e}
		case []any:
			list = e
		default:
			continue
		}
		for _, f := range files {
			list = append(list, f)
		}
		service.Set("env_file", list)
	}
}

func readDocument(path string) (any, error) {
	raw, err := document.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.WrapCLIError(model.ExitDocumentNotFound,
				fmt.Sprintf("devSpec document not found: %s", path), err)
		}
		var se *schema.StructuralError
		if errors.As(err, &se) {
			return nil, invalidDocument(path, err)
		}
		return nil, model.WrapCLIError(model.ExitDocumentNotFound,
			fmt.Sprintf("failed to read %s", path), err)
	}
	return raw, nil
}

func invalidDocument(path string, err error) error {
	return model.WrapCLIError(model.ExitInvalidDocument,
		fmt.Sprintf("invalid devSpec document %s", path), err)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
