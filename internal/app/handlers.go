package app

import (
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/notify"
)

// onValueChanged writes a committed edit back to the dataset.
func (app *Application) onValueChanged(ev notify.Event) {
	if app.data == nil || !app.cfg.Data.SaveEdits {
		return
	}
	path, _ := ev.Payload.(string)
	if err := app.data.Set(path, ev.Property, ev.NewValue); err != nil {
		app.logger.Error("write back: %v", err)
		return
	}
	if err := app.data.Save(); err != nil {
		app.logger.Error("%v", err)
		return
	}
	app.logger.Debug("saved %s=%v at %s", ev.Property, ev.NewValue, path)
}

// onDeleteRow removes the row the grid asked to delete. A saved dataset is
// edited and reloaded so that row paths stay in step with the document.
func (app *Application) onDeleteRow(ev notify.Event) {
	if app.data != nil && app.cfg.Data.SaveEdits {
		path, _ := ev.Payload.(string)
		if err := app.data.Delete(path); err != nil {
			app.logger.Error("delete: %v", err)
			return
		}
		if err := app.data.Save(); err != nil {
			app.logger.Error("%v", err)
		}
		rows, err := app.data.Rows()
		if err != nil {
			app.logger.Error("reload after delete: %v", err)
			return
		}
		app.grid.SetRows(rows)
		return
	}

	if ev.ChildIndex < 0 {
		app.grid.RemoveRow(ev.DataIndex)
		return
	}
	parent := app.grid.Row(ev.DataIndex)
	if parent == nil || ev.ChildIndex >= len(parent.Children) {
		return
	}
	parent.Children = append(parent.Children[:ev.ChildIndex:ev.ChildIndex], parent.Children[ev.ChildIndex+1:]...)
	app.grid.SetRows(append([]*model.Row(nil), app.grid.Rows()...))
}
