package key

import "testing"

func TestEventString(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"plain rune", NewRuneEvent('a', ModNone), "a"},
		{"ctrl space", NewRuneEvent(' ', ModCtrl), "Ctrl+Space"},
		{"shift down", NewSpecialEvent(KeyDown, ModShift), "Shift+Down"},
		{"ctrl shift up", NewSpecialEvent(KeyUp, ModCtrl|ModShift), "Ctrl+Shift+Up"},
		{"enter", NewSpecialEvent(KeyEnter, ModNone), "Enter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventIsChar(t *testing.T) {
	if !NewRuneEvent('x', ModNone).IsChar() {
		t.Error("plain x should be a char")
	}
	if !NewRuneEvent('X', ModShift).IsChar() {
		t.Error("shifted X should be a char")
	}
	if NewRuneEvent('x', ModCtrl).IsChar() {
		t.Error("Ctrl+x should not be a char")
	}
	if NewSpecialEvent(KeyEnter, ModNone).IsChar() {
		t.Error("Enter should not be a char")
	}
}

func TestEventIsRuneWith(t *testing.T) {
	ev := NewRuneEvent('A', ModCtrl|ModShift)
	if !ev.IsRuneWith('a', ModCtrl) {
		t.Error("Ctrl+Shift+A should match Ctrl+a")
	}
	if ev.IsRuneWith('a', ModAlt) {
		t.Error("should not match Alt+a")
	}
}

func TestModifierHasCommand(t *testing.T) {
	if !ModCtrl.HasCommand() || !ModMeta.HasCommand() {
		t.Error("Ctrl and Meta are command modifiers")
	}
	if ModShift.HasCommand() {
		t.Error("Shift is not a command modifier")
	}
}
