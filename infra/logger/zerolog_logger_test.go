package logger

import "testing"

func TestNewReturnsLogger(t *testing.T) {
	l := New("test-component")
	if l == nil {
		t.Fatal("expected logger")
	}
	l.Infof("hello %s", "world")
	l.Debugw("structured", map[string]any{"k": 1})
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
	l.Debugw("x", nil)
}
