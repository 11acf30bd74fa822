package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func TestSessionCalls(t *testing.T) {
	s, err := startSession(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()

	tests := []struct {
		class, method string
		args          []string
		want          string
		err           string
	}{
		{class: "Calc", method: "add", args: []string{"2", "3"}, want: "5"},
		{class: "Calc", method: "mul", args: []string{"1.5", "2"}, want: "3"},
		{class: "Counter", method: "increment", want: "1"},
		{class: "Counter", method: "increment", want: "2"},
		{class: "Echo", method: "join", args: []string{"+", "a", "b"}, want: "a+b"},
		{class: "Calc", method: "add", args: []string{"two", "3"}, err: "argument 0"},
		{class: "Calc", method: "div", args: []string{"1", "0"}, err: "method returned an error"},
		{class: "Nope", method: "add", err: "unknown class"},
		{class: "Calc", method: "nope", err: "has no method"},
	}
	for _, tt := range tests {
		t.Run(tt.class+"."+tt.method, func(t *testing.T) {
			got, err := s.call(tt.class, tt.method, tt.args)
			if tt.err != "" {
				if err == nil || !strings.Contains(err.Error(), tt.err) {
					t.Errorf("err = %v, want %q", err, tt.err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("%s.%s%v = %q, %v, want %q", tt.class, tt.method, tt.args, got, err, tt.want)
			}
		})
	}
}

func TestClassListing(t *testing.T) {
	s, err := startSession(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()

	classes := s.classes()
	if len(classes) != 3 {
		t.Fatalf("%d classes", len(classes))
	}
	add, ok := classes[2].Method("add")
	if !ok {
		t.Fatalf("Calc methods = %v", classes[2].MethodNames())
	}
	if got := formatMethod(add); got != "add(arg0: int, arg1: int)" {
		t.Errorf("formatMethod = %q", got)
	}
}

func TestSplitArgs(t *testing.T) {
	if got := splitArgs(""); got != nil {
		t.Errorf("splitArgs(\"\") = %v", got)
	}
	if got := splitArgs("a,b"); len(got) != 2 || got[1] != "b" {
		t.Errorf("splitArgs(\"a,b\") = %v", got)
	}
}

func TestInteractiveCall(t *testing.T) {
	s, err := startSession(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()

	m := newInteractiveModel(s)
	target := -1
	for i, e := range m.entries {
		if e.class == "Calc" && e.method.Name == "add" {
			target = i
		}
	}
	if target < 0 {
		t.Fatal("Calc.add not listed")
	}
	for m.selected < target {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInputArgs || len(m.inputs) != 2 {
		t.Fatalf("state = %d with %d inputs", m.state, len(m.inputs))
	}
	m.inputs[0].SetValue("20")
	m.inputs[1].SetValue("22")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter did not call")
	}
	m.Update(cmd())
	if m.state != stateShowResult || m.err != nil || m.result != "42" {
		t.Errorf("result = %q, %v", m.result, m.err)
	}
	if !strings.Contains(m.View(), "42") {
		t.Errorf("view = %q", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelect {
		t.Errorf("state after esc = %d", m.state)
	}
}
