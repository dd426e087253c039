package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const postsSpec = `[
	{
		"name": "posts",
		"fields": [
			{"name": "title", "type": "string", "required": true},
			{"name": "views", "type": "number", "min": 0}
		],
		"relationships": [
			{"name": "author", "type": "belongsTo", "resource": "users", "foreignKey": "user_id"}
		]
	},
	{"name": "users"}
]`

func TestParse_BareArray(t *testing.T) {
	resources, err := Parse([]byte(postsSpec))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}

	posts := resources[0]
	if posts.Name != "posts" || len(posts.Fields) != 2 {
		t.Fatalf("unexpected posts resource: %+v", posts)
	}
	if posts.PK() != "id" {
		t.Fatalf("primary key must default to id, got %q", posts.PK())
	}
	if !posts.Fields[0].Required {
		t.Fatal("title must be required")
	}
	if posts.Fields[1].Min == nil || *posts.Fields[1].Min != 0 {
		t.Fatalf("views min not decoded: %+v", posts.Fields[1])
	}

	rel := posts.GetRelationship("author")
	if rel == nil || !rel.IsBelongsTo() || rel.Resource != "users" {
		t.Fatalf("author relationship not decoded: %+v", rel)
	}
}

func TestParse_WrapperObject(t *testing.T) {
	doc := `{"resources": [{"name": "tags"}]}`
	resources, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(resources) != 1 || resources[0].Name != "tags" {
		t.Fatalf("unexpected resources: %+v", resources)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			"duplicate resource name",
			`[{"name": "posts"}, {"name": "posts"}]`,
			"duplicate resource name",
		},
		{
			"empty resource name",
			`[{"name": ""}]`,
			"empty name",
		},
		{
			"unknown field type",
			`[{"name": "posts", "fields": [{"name": "title", "type": "varchar"}]}]`,
			"unknown type",
		},
		{
			"unknown relationship type",
			`[{"name": "posts", "relationships": [{"name": "author", "type": "hasSome", "resource": "users", "foreignKey": "user_id"}]}]`,
			"unknown type",
		},
		{
			"manyToMany without through",
			`[{"name": "posts", "relationships": [{"name": "tags", "type": "manyToMany", "resource": "tags", "foreignKey": "post_id"}]}]`,
			"through",
		},
		{
			"relationship without foreignKey",
			`[{"name": "posts", "relationships": [{"name": "author", "type": "belongsTo", "resource": "users"}]}]`,
			"foreignKey",
		},
		{
			"not json",
			`{nope`,
			"decode resource spec",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.json")
	if err := os.WriteFile(path, []byte(postsSpec), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	if err := LoadFile(path, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if res := reg.GetResource("posts"); res == nil || res.Name != "posts" {
		t.Fatalf("posts missing from registry: %+v", res)
	}
	names := reg.ResourceNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 registered resources, got %v", names)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	err := LoadFile(filepath.Join(t.TempDir(), "absent.json"), NewRegistry())
	if err == nil {
		t.Fatal("expected error for missing spec file")
	}
}
