package app

import (
	"fmt"
	"strings"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/script"
)

// BuildColumns turns column config into grid columns, compiling the Lua
// hooks on eng. With no configured columns, one text column is derived per
// field name.
func BuildColumns(cfgs []config.ColumnConfig, fields []string, eng *script.Engine) ([]*model.Column, error) {
	if len(cfgs) == 0 {
		cols := make([]*model.Column, 0, len(fields))
		for _, f := range fields {
			cols = append(cols, model.NewColumn(labelFor(f), model.WithField(f)))
		}
		return cols, nil
	}

	cols := make([]*model.Column, 0, len(cfgs))
	for i, cc := range cfgs {
		c, err := buildColumn(cc, eng)
		if err != nil {
			return nil, NewOperationError("build column", fmt.Sprintf("%d (%s)", i, cc.Label), err)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func buildColumn(cc config.ColumnConfig, eng *script.Engine) (*model.Column, error) {
	label := cc.Label
	if label == "" {
		label = labelFor(cc.Field)
	}

	var opts []model.ColumnOption
	if cc.Field != "" {
		opts = append(opts, model.WithField(cc.Field))
	} else if cc.Index != nil {
		opts = append(opts, model.WithIndex(*cc.Index))
	}
	if cc.Width > 0 {
		opts = append(opts, model.WithWidth(cc.Width))
	}
	if cc.Spring {
		opts = append(opts, model.WithSpring())
	}
	if cc.ReadOnly {
		opts = append(opts, model.WithReadOnly())
	}

	c := model.NewColumn(label, opts...)
	c.Wrap = cc.Wrap
	c.Align = model.ParseAlign(cc.Align)
	if cc.Sortable != nil {
		c.Sortable = *cc.Sortable
	}
	if cc.Visible != nil {
		c.Visible = *cc.Visible
	}

	name := c.Property(0)
	var err error
	if cc.Formatter != "" {
		if c.Formatter, err = eng.Formatter(name+".formatter", cc.Formatter); err != nil {
			return nil, err
		}
	}
	if cc.Tooltip != "" {
		if c.TooltipFormatter, err = eng.Formatter(name+".tooltip", cc.Tooltip); err != nil {
			return nil, err
		}
	}
	if cc.Style != "" {
		if c.StyleFormatter, err = eng.Style(name+".style", cc.Style); err != nil {
			return nil, err
		}
	}

	if cc.Editor != "" || len(cc.Options) > 0 || cc.Validate != "" {
		spec := &model.EditorSpec{Kind: model.ParseEditorKind(strings.ToLower(cc.Editor))}
		for _, o := range cc.Options {
			spec.Options = append(spec.Options, model.Option{Key: o.Key, Label: o.Label, Value: optionValue(o.Value)})
		}
		if cc.Validate != "" {
			if spec.Validate, err = eng.Validator(name+".validate", cc.Validate); err != nil {
				return nil, err
			}
		}
		c.Editor = spec
	}
	return c, nil
}

// labelFor turns a field name like "first_name" into "First name".
func labelFor(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// optionValue narrows TOML integers to int, matching values loaded from
// JSON.
func optionValue(v any) any {
	if n, ok := v.(int64); ok {
		return int(n)
	}
	return v
}
