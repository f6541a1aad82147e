package app

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/gridstorm/internal/grid/model"
)

// Datasource is a JSON document holding the grid rows. Each loaded row
// carries its gjson path in Payload so edits can be written back in place.
type Datasource struct {
	path        string
	rowsPath    string
	childrenKey string
	data        []byte
	dirty       bool
}

// NewDatasource creates a datasource over data. rowsPath is a gjson path to
// the row array; empty means the document root.
func NewDatasource(path string, data []byte, rowsPath, childrenKey string) *Datasource {
	return &Datasource{
		path:        path,
		rowsPath:    rowsPath,
		childrenKey: childrenKey,
		data:        data,
	}
}

// OpenDatasource reads the JSON file at path.
func OpenDatasource(path, rowsPath, childrenKey string) (*Datasource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewOperationError("read", path, err)
	}
	return NewDatasource(path, data, rowsPath, childrenKey), nil
}

// Bytes returns the current document.
func (d *Datasource) Bytes() []byte {
	return d.data
}

// Dirty reports whether the document has unsaved changes.
func (d *Datasource) Dirty() bool {
	return d.dirty
}

// Rows parses the row array. Objects become field rows and arrays become
// positional rows; the children key of an object holds its child rows.
func (d *Datasource) Rows() ([]*model.Row, error) {
	if !gjson.ValidBytes(d.data) {
		return nil, NewOperationError("parse", d.path, os.ErrInvalid)
	}
	root := gjson.ParseBytes(d.data)
	if d.rowsPath != "" {
		root = root.Get(d.rowsPath)
	}
	if !root.IsArray() {
		return nil, NewOperationError("parse", d.path, ErrNotArray)
	}

	var rows []*model.Row
	for i, item := range root.Array() {
		row := d.row(item, joinPath(d.rowsPath, strconv.Itoa(i)))
		if kids := item.Get(escapeKey(d.childrenKey)); d.childrenKey != "" && kids.IsArray() {
			base := joinPath(row.Payload.(string), escapeKey(d.childrenKey))
			for j, kid := range kids.Array() {
				row.Children = append(row.Children, d.row(kid, joinPath(base, strconv.Itoa(j))))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (d *Datasource) row(item gjson.Result, path string) *model.Row {
	var row *model.Row
	switch {
	case item.IsObject():
		fields := make(map[string]any)
		item.ForEach(func(k, v gjson.Result) bool {
			if k.String() != d.childrenKey {
				fields[k.String()] = jsonValue(v)
			}
			return true
		})
		row = model.NewRow(fields)
	case item.IsArray():
		var values []any
		for _, v := range item.Array() {
			values = append(values, jsonValue(v))
		}
		row = model.NewValuesRow(values...)
	default:
		row = model.NewValuesRow(jsonValue(item))
	}
	row.Payload = path
	return row
}

// Fields returns the keys of the first object row in document order,
// without the children key.
func (d *Datasource) Fields() []string {
	root := gjson.ParseBytes(d.data)
	if d.rowsPath != "" {
		root = root.Get(d.rowsPath)
	}
	first := root.Get("0")
	if !first.IsObject() {
		return nil
	}
	var keys []string
	first.ForEach(func(k, _ gjson.Result) bool {
		if k.String() != d.childrenKey {
			keys = append(keys, k.String())
		}
		return true
	})
	return keys
}

// Set writes value into property of the row at rowPath.
func (d *Datasource) Set(rowPath, property string, value any) error {
	if rowPath == "" {
		return NewOperationError("set", property, ErrNoPath)
	}
	data, err := sjson.SetBytes(d.data, joinPath(rowPath, escapeKey(property)), value)
	if err != nil {
		return NewOperationError("set", property, err)
	}
	d.data = data
	d.dirty = true
	return nil
}

// Delete removes the row at rowPath. Paths of later siblings shift, so rows
// must be reloaded afterwards.
func (d *Datasource) Delete(rowPath string) error {
	if rowPath == "" {
		return NewOperationError("delete", "", ErrNoPath)
	}
	data, err := sjson.DeleteBytes(d.data, rowPath)
	if err != nil {
		return NewOperationError("delete", rowPath, err)
	}
	d.data = data
	d.dirty = true
	return nil
}

// Save writes the document back to its file through a temporary file in the
// same directory.
func (d *Datasource) Save() error {
	if !d.dirty || d.path == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".gridstorm-*")
	if err != nil {
		return NewOperationError("save", d.path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(d.data); err != nil {
		tmp.Close()
		return NewOperationError("save", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewOperationError("save", d.path, err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return NewOperationError("save", d.path, err)
	}
	d.dirty = false
	return nil
}

// jsonValue converts a gjson value. Integral numbers become int so that
// number editors keep integer semantics.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		if f := v.Num; f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return v.Num
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		return v.Value()
	}
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// escapeKey quotes gjson path metacharacters in an object key.
func escapeKey(k string) string {
	return pathEscaper.Replace(k)
}

func joinPath(base, part string) string {
	if base == "" {
		return part
	}
	return base + "." + part
}
