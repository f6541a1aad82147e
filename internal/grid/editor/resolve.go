package editor

import (
	"github.com/dshills/gridstorm/internal/grid/model"
)

// KindFor resolves the editor kind for a cell. An explicit kind wins;
// otherwise the value's runtime type decides.
func KindFor(spec *model.EditorSpec, value any) model.EditorKind {
	if spec != nil && spec.Kind != model.EditorAuto {
		return spec.Kind
	}
	if spec != nil && spec.New != nil {
		return model.EditorCustom
	}
	switch value.(type) {
	case bool:
		return model.EditorBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return model.EditorNumber
	default:
		return model.EditorText
	}
}

// New builds the editor for a cell seeded with value. It returns nil for a
// custom kind without a factory.
func New(spec *model.EditorSpec, value any) model.Editor {
	var options []model.Option
	if spec != nil {
		options = spec.Options
	}

	switch KindFor(spec, value) {
	case model.EditorNumber:
		return NewNumber(value)
	case model.EditorBoolean:
		return NewBoolean(value)
	case model.EditorFlag:
		return NewFlag(value, options)
	case model.EditorDropdown:
		return NewDropdown(value, options)
	case model.EditorCustom:
		if spec == nil || spec.New == nil {
			return nil
		}
		return spec.New(value, spec)
	default:
		return NewText(value)
	}
}
