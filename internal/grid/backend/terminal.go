package backend

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/input/mouse"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex

	// buttons is the last reported button mask; tcell reports state, not
	// transitions, so presses are derived from it.
	buttons tcell.ButtonMask
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.EnableFocus()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cell.IsContinuation() {
		return
	}
	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	fg, bg, attrs := style.Decompose()
	s := core.Style{Foreground: convertTcellColor(fg), Background: convertTcellColor(bg)}
	if attrs&tcell.AttrBold != 0 {
		s.Attributes |= core.AttrBold
	}
	if attrs&tcell.AttrReverse != 0 {
		s.Attributes |= core.AttrReverse
	}
	return core.NewStyledCell(mainc, s)
}

func (t *Terminal) Fill(rect core.Rect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := convertStyle(cell.Style)
	width, height := t.screen.Size()
	for y := max(rect.Top, 0); y < rect.Bottom && y < height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < width; x++ {
			t.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		// Screen finalized.
		return Event{Type: EventInterrupt}
	}
	return t.convertEvent(ev)
}

func (t *Terminal) Interrupt() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
}

// convertStyle converts a core.Style to tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(convertColor(s.Background))
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	return style
}

func convertColor(c core.Color) tcell.Color {
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// convertTcellColor converts tcell.Color to core.Color.
func convertTcellColor(tc tcell.Color) core.Color {
	if tc == tcell.ColorDefault {
		return core.ColorDefault
	}
	if tc >= tcell.ColorValid && tc < tcell.ColorIsRGB {
		return core.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

// convertEvent converts tcell events to our Event type.
func (t *Terminal) convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e)}

	case *tcell.EventMouse:
		return Event{Type: EventMouse, Mouse: t.convertMouse(e)}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	case *tcell.EventFocus:
		return Event{Type: EventFocus, Focused: e.Focused}

	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts a tcell key event to a key.Event.
func convertKey(e *tcell.EventKey) key.Event {
	mods := convertMod(e.Modifiers())
	ev := key.Event{Modifiers: mods, Timestamp: e.When()}

	switch k := e.Key(); k {
	case tcell.KeyRune:
		ev.Key = key.KeyRune
		ev.Rune = e.Rune()
	case tcell.KeyEscape:
		ev.Key = key.KeyEscape
	case tcell.KeyEnter:
		ev.Key = key.KeyEnter
	case tcell.KeyTab:
		ev.Key = key.KeyTab
	case tcell.KeyBacktab:
		ev.Key = key.KeyTab
		ev.Modifiers = mods.With(key.ModShift)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ev.Key = key.KeyBackspace
	case tcell.KeyDelete:
		ev.Key = key.KeyDelete
	case tcell.KeyHome:
		ev.Key = key.KeyHome
	case tcell.KeyEnd:
		ev.Key = key.KeyEnd
	case tcell.KeyPgUp:
		ev.Key = key.KeyPageUp
	case tcell.KeyPgDn:
		ev.Key = key.KeyPageDown
	case tcell.KeyUp:
		ev.Key = key.KeyUp
	case tcell.KeyDown:
		ev.Key = key.KeyDown
	case tcell.KeyLeft:
		ev.Key = key.KeyLeft
	case tcell.KeyRight:
		ev.Key = key.KeyRight
	case tcell.KeyF2:
		ev.Key = key.KeyF2
	case tcell.KeyCtrlSpace:
		ev.Key = key.KeyRune
		ev.Rune = ' '
		ev.Modifiers = mods.With(key.ModCtrl)
	default:
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			ev.Key = key.KeyRune
			ev.Rune = 'a' + rune(k-tcell.KeyCtrlA)
			ev.Modifiers = mods.With(key.ModCtrl)
		}
	}
	return ev
}

// convertMouse turns tcell's button state into press/release transitions.
func (t *Terminal) convertMouse(e *tcell.EventMouse) mouse.Event {
	x, y := e.Position()
	buttons := e.Buttons()
	ev := mouse.Event{
		Position:  mouse.Position{X: x, Y: y},
		Modifiers: convertMod(e.Modifiers()),
		Timestamp: e.When(),
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	switch {
	case buttons&tcell.WheelUp != 0:
		ev.Button, ev.Action = mouse.ButtonScrollUp, mouse.ActionPress
	case buttons&tcell.WheelDown != 0:
		ev.Button, ev.Action = mouse.ButtonScrollDown, mouse.ActionPress
	case buttons&tcell.WheelLeft != 0:
		ev.Button, ev.Action = mouse.ButtonScrollLeft, mouse.ActionPress
	case buttons&tcell.WheelRight != 0:
		ev.Button, ev.Action = mouse.ButtonScrollRight, mouse.ActionPress
	case buttons&tcell.Button1 != 0 && t.buttons&tcell.Button1 == 0:
		ev.Button, ev.Action = mouse.ButtonLeft, mouse.ActionPress
	case buttons&tcell.Button2 != 0 && t.buttons&tcell.Button2 == 0:
		ev.Button, ev.Action = mouse.ButtonRight, mouse.ActionPress
	case buttons == tcell.ButtonNone && t.buttons != tcell.ButtonNone:
		ev.Action = mouse.ActionRelease
	default:
		ev.Action = mouse.ActionMove
	}

	t.buttons = buttons &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	return ev
}

// convertMod converts a tcell modifier mask to key.Modifier.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result = result.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		result = result.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		result = result.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		result = result.With(key.ModMeta)
	}
	return result
}
