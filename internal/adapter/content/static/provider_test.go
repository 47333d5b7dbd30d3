package static

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"outpost/internal/domain/content"
)

func TestProvider_DefaultContentBuildsCatalog(t *testing.T) {
	cat, err := Provider{}.Catalog(context.Background(), content.DefaultHooks())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	s := cat.Settings()
	if s.SettleBuilding != "campfire" || s.WinBuilding != "beacon" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if _, ok := cat.Action("forage"); !ok {
		t.Fatalf("expected forage action")
	}
	b := cat.MustBuilding("campfire")
	if len(b.Consume) != 1 || b.Consume[0] != (content.Amount{Qty: 3, ID: "wood"}) {
		t.Fatalf("unexpected campfire consume: %+v", b.Consume)
	}
	if got := cat.MustIncident("drought").Needs["water"]; got != 2 {
		t.Fatalf("drought water multiplier = %v", got)
	}
}

func TestProvider_IndexAndFile(t *testing.T) {
	p := Provider{}
	idx, err := p.Index(context.Background())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if idx.Version != "1.0.0" || len(idx.Files) != len(Files) {
		t.Fatalf("unexpected index: %+v", idx)
	}
	b, err := p.File(context.Background(), "perks.yaml")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("empty perks file")
	}
	if _, err := p.File(context.Background(), "../provider.go"); !errors.Is(err, ErrInvalidContentPath) {
		t.Fatalf("expected traversal rejection, got %v", err)
	}
}

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestProvider_DirectoryWithOptionalFilesMissing(t *testing.T) {
	root := writeContent(t, map[string]string{
		"settings.yaml":  "version: \"2.1.0\"\nsettleBuilding: hut\ninitialActions: [chop]\n",
		"resources.yaml": "- {id: wood, name: Wood, dropRate: 1}\n",
		"actions.yaml":   "- {id: chop, name: Chop, time: 1, give: [[1, wood]]}\n",
		"buildings.yaml": "- {id: hut, name: Hut, consume: [[2, wood]], space: 1}\n",
	})
	cat, err := Provider{Root: root}.Catalog(context.Background(), content.DefaultHooks())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if got := cat.MustAction("chop").Give; len(got) != 1 || got[0].ID != "wood" {
		t.Fatalf("unexpected give: %+v", got)
	}
	if len(cat.IncidentIDs()) != 0 || len(cat.PerkIDs()) != 0 {
		t.Fatalf("expected no incidents or perks")
	}
}

func TestProvider_SchemaRejectsTypos(t *testing.T) {
	root := writeContent(t, map[string]string{
		"settings.yaml":  "version: \"1.0.0\"\nsettleBuilding: hut\n",
		"resources.yaml": "- {id: wood, name: Wood, dropRate: 1}\n",
		"actions.yaml":   "- {id: chop, name: Chop, tiem: 1}\n",
		"buildings.yaml": "- {id: hut, name: Hut}\n",
	})
	_, err := Provider{Root: root}.Tables(context.Background())
	if !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestProvider_SchemaRejectsMalformedAmount(t *testing.T) {
	root := writeContent(t, map[string]string{
		"settings.yaml":  "version: \"1.0.0\"\nsettleBuilding: hut\n",
		"resources.yaml": "- {id: wood, name: Wood}\n",
		"actions.yaml":   "- {id: chop, name: Chop, give: [[wood, 1]]}\n",
		"buildings.yaml": "- {id: hut, name: Hut}\n",
	})
	_, err := Provider{Root: root}.Tables(context.Background())
	if !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestProvider_CatalogReportsDanglingReference(t *testing.T) {
	root := writeContent(t, map[string]string{
		"settings.yaml":  "version: \"1.0.0\"\nsettleBuilding: hut\n",
		"resources.yaml": "- {id: wood, name: Wood}\n",
		"actions.yaml":   "- {id: chop, name: Chop, give: [[1, iron]]}\n",
		"buildings.yaml": "- {id: hut, name: Hut}\n",
	})
	_, err := Provider{Root: root}.Catalog(context.Background(), content.DefaultHooks())
	if !errors.Is(err, content.ErrUnknownID) {
		t.Fatalf("expected unknown id, got %v", err)
	}
}
