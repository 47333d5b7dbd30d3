package static

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"outpost/internal/domain/content"
)

//go:embed default/*.yaml
var defaultFS embed.FS

//go:embed schema/content.schema.json
var schemaJSON []byte

// Files are the tables a content directory must provide, settings first.
var Files = []string{"settings", "resources", "actions", "buildings", "incidents", "perks"}

var (
	ErrInvalidContentPath = errors.New("invalid content filepath")
	ErrInvalidContent     = errors.New("invalid content")
)

// Provider reads content tables from YAML files under Root, or from the
// built-in set when Root is empty.
type Provider struct {
	Root string
}

type Index struct {
	Version string   `json:"version"`
	Files   []string `json:"files"`
}

func (p Provider) fsys() (fs.FS, string) {
	if strings.TrimSpace(p.Root) == "" {
		return defaultFS, "default"
	}
	return os.DirFS(p.Root), "."
}

func (p Provider) read(name string) ([]byte, error) {
	fsys, dir := p.fsys()
	return fs.ReadFile(fsys, path.Join(dir, name))
}

// Tables loads every file, validates the assembled document against the
// content schema and decodes it.
func (p Provider) Tables(_ context.Context) (content.Tables, error) {
	doc := map[string]any{}
	for _, name := range Files {
		raw, err := p.read(name + ".yaml")
		if errors.Is(err, fs.ErrNotExist) && name != "settings" {
			doc[name] = []any{}
			continue
		}
		if err != nil {
			return content.Tables{}, fmt.Errorf("read %s: %w", name, err)
		}
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return content.Tables{}, fmt.Errorf("%w: %s.yaml: %v", ErrInvalidContent, name, err)
		}
		if v == nil && name != "settings" {
			v = []any{}
		}
		doc[name] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return content.Tables{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := validate(raw); err != nil {
		return content.Tables{}, err
	}
	var t content.Tables
	if err := json.Unmarshal(raw, &t); err != nil {
		return content.Tables{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return t, nil
}

// Catalog loads the tables and indexes them with hooks.
func (p Provider) Catalog(ctx context.Context, hooks *content.Hooks) (*content.Catalog, error) {
	t, err := p.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return content.NewCatalog(t, hooks)
}

func (p Provider) Index(ctx context.Context) (Index, error) {
	fsys, dir := p.fsys()
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Index{}, err
	}
	idx := Index{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			idx.Files = append(idx.Files, e.Name())
		}
	}
	sort.Strings(idx.Files)
	t, err := p.Tables(ctx)
	if err != nil {
		return Index{}, err
	}
	idx.Version = t.Settings.Version
	return idx, nil
}

func (p Provider) File(_ context.Context, rel string) ([]byte, error) {
	if strings.TrimSpace(p.Root) == "" {
		clean := path.Clean(strings.TrimSpace(rel))
		if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
			return nil, ErrInvalidContentPath
		}
		return p.read(clean)
	}
	safePath, err := secureJoin(p.Root, rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(safePath)
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", ErrInvalidContentPath
	}
	if filepath.IsAbs(rel) {
		return "", ErrInvalidContentPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if target != rootAbs && !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidContentPath
	}
	return target, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("content.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("content.schema.json")
	})
	return schema, schemaErr
}

func validate(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile content schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}
