package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/grid/script"
	"github.com/dshills/gridstorm/internal/input/key"
)

const people = `{
  "data": {
    "items": [
      {"name": "carol", "age": 41, "children": [{"name": "kid", "age": 9}]},
      {"name": "alice", "age": 29.5},
      {"name": "bob", "age": 35}
    ]
  }
}`

const appConfig = `
[grid]
sort_column = "name"

[data]
rows_path = "data.items"
save_edits = true

[[columns]]
label = "Name"
field = "name"
width = 12

[[columns]]
label = "Age"
field = "age"
width = 6
validate = "return new >= 0"
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func settle(g *grid.Grid) {
	for i := 0; i < 10 && g.Tick() > 0; i++ {
	}
}

func newApp(t *testing.T, opts Options) *Application {
	t.Helper()
	dir := t.TempDir()
	if opts.ConfigPath == "" {
		opts.ConfigPath = writeFile(t, dir, "config.toml", appConfig)
	}
	if opts.DataPath == "" {
		opts.DataPath = writeFile(t, dir, "people.json", people)
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Close)
	settle(app.Grid())
	return app
}

func TestDatasourceRows(t *testing.T) {
	ds := NewDatasource("", []byte(people), "data.items", "children")
	rows, err := ds.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Fields["age"] != 41 {
		t.Errorf("integral numbers should load as int, got %#v", rows[0].Fields["age"])
	}
	if rows[1].Fields["age"] != 29.5 {
		t.Errorf("age = %#v, want 29.5", rows[1].Fields["age"])
	}
	if _, ok := rows[0].Fields["children"]; ok {
		t.Error("children key should not be a field")
	}
	if len(rows[0].Children) != 1 || rows[0].Children[0].Payload != "data.items.0.children.0" {
		t.Errorf("children = %+v", rows[0].Children)
	}
	if rows[2].Payload != "data.items.2" {
		t.Errorf("payload = %v", rows[2].Payload)
	}
	if got := ds.Fields(); strings.Join(got, ",") != "name,age" {
		t.Errorf("Fields() = %v", got)
	}
}

func TestDatasourceArrays(t *testing.T) {
	ds := NewDatasource("", []byte(`[["a", 1], ["b", 2]]`), "", "")
	rows, err := ds.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 || rows[1].Values[0] != "b" || rows[1].Values[1] != 2 {
		t.Errorf("rows = %+v", rows)
	}

	if _, err := NewDatasource("", []byte(`{"a": 1}`), "", "").Rows(); !errors.Is(err, ErrNotArray) {
		t.Errorf("object root err = %v, want ErrNotArray", err)
	}
}

func TestDatasourceSetAndSave(t *testing.T) {
	path := writeFile(t, t.TempDir(), "d.json", `[{"first.name": "a", "n": 1}]`)
	ds, err := OpenDatasource(path, "", "children")
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Set("0", "first.name", "z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ds.Set("", "n", 2); !errors.Is(err, ErrNoPath) {
		t.Errorf("Set without path err = %v", err)
	}
	if err := ds.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _ := os.ReadFile(path)
	if got := gjson.GetBytes(data, `0.first\.name`).String(); got != "z" {
		t.Errorf("saved value = %q in %s", got, data)
	}
	if ds.Dirty() {
		t.Error("Save should clear dirty")
	}
}

func TestBuildColumns(t *testing.T) {
	eng := script.New()
	defer eng.Close()

	idx := 1
	hidden := false
	cols, err := BuildColumns([]config.ColumnConfig{
		{Label: "Name", Field: "name", Formatter: "return string.upper(value)"},
		{Index: &idx, Visible: &hidden, Editor: "dropdown", Options: []config.OptionConfig{{Key: "x", Value: int64(3)}}},
	}, nil, eng)
	if err != nil {
		t.Fatalf("BuildColumns: %v", err)
	}
	if cols[0].Formatter == nil || cols[0].Editor != nil {
		t.Errorf("name column = %+v", cols[0])
	}
	if cols[1].Visible || cols[1].Property(1) != "1" || cols[1].Editor.Options[0].Value != 3 {
		t.Errorf("indexed column = %+v", cols[1])
	}

	if _, err := BuildColumns([]config.ColumnConfig{{Field: "x", Validate: "return ("}}, nil, eng); !errors.Is(err, script.ErrCompile) {
		t.Errorf("bad hook err = %v, want ErrCompile", err)
	}

	derived, _ := BuildColumns(nil, []string{"first_name", "age"}, eng)
	if len(derived) != 2 || derived[0].Label != "First name" || derived[1].Field != "age" {
		t.Errorf("derived columns = %+v %+v", derived[0], derived[1])
	}
}

func TestNewLoadsAndSorts(t *testing.T) {
	app := newApp(t, Options{})
	g := app.Grid()
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	if v, _ := g.ViewRow(0); v.Row != 1 {
		t.Errorf("first view row = %d, want alice (1)", v.Row)
	}
}

func TestEditIsWrittenBack(t *testing.T) {
	app := newApp(t, Options{})
	g := app.Grid()

	// View row 2 is carol once sorted by name.
	if err := g.CreateEditor(2, 1); err != nil {
		t.Fatalf("CreateEditor: %v", err)
	}
	g.HandleKey(key.NewSpecialEvent(key.KeyEnd, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	for _, r := range "42" {
		g.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
	g.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	if g.Editing() {
		t.Fatalf("commit failed: %v", g.EditorError())
	}

	data, err := os.ReadFile(app.Config().Data.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "data.items.0.age").Int(); got != 42 {
		t.Errorf("saved age = %d, want 42", got)
	}
}

func TestReadOnlyDoesNotWrite(t *testing.T) {
	app := newApp(t, Options{ReadOnly: true})
	g := app.Grid()
	g.CreateEditor(0, 0)
	g.HandleKey(key.NewRuneEvent('!', key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))

	data, _ := os.ReadFile(app.Config().Data.Path)
	if string(data) != people {
		t.Error("read-only session modified the dataset")
	}
	if g.Row(1).Fields["name"] != "alice!" {
		t.Errorf("in-memory row = %v", g.Row(1).Fields["name"])
	}
}

func TestDeleteRow(t *testing.T) {
	app := newApp(t, Options{})
	g := app.Grid()

	g.HandleKey(key.NewSpecialEvent(key.KeyHome, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyDelete, key.ModNone))
	settle(g)

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}
	data, _ := os.ReadFile(app.Config().Data.Path)
	if n := len(gjson.GetBytes(data, "data.items").Array()); n != 2 {
		t.Errorf("saved rows = %d, want 2", n)
	}
	if gjson.GetBytes(data, `data.items.#(name=="alice")`).Exists() {
		t.Error("alice should be gone")
	}
}

func TestInitErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{ConfigPath: writeFile(t, dir, "bad.toml", "[grid\n")})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Errorf("bad config err = %v", err)
	}

	_, err = New(Options{ConfigPath: filepath.Join(dir, "none.toml"), DataPath: filepath.Join(dir, "none.json")})
	if !errors.As(err, &ie) || ie.Component != "data" || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing data err = %v", err)
	}
}

func TestRunUntilQuit(t *testing.T) {
	app := newApp(t, Options{})
	b := backend.NewNullBackend(40, 10)
	app.SetBackend(b)

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewSpecialEvent(key.KeyDown, key.ModNone)})
	b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent('q', key.ModNone)})

	select {
	case err := <-done:
		if !errors.Is(err, ErrQuit) {
			t.Fatalf("Run() = %v, want ErrQuit", err)
		}
	case <-time.After(5 * time.Second):
		app.Shutdown()
		t.Fatal("Run did not return")
	}

	if b.Shows() == 0 {
		t.Error("nothing was drawn")
	}
	if got := app.Grid().Selected(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Selected() = %v, want [1]", got)
	}
	if !strings.HasPrefix(b.Line(0), "Name") {
		t.Errorf("header = %q", b.Line(0))
	}
}
