package views

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tick/internal/auth"
	"github.com/tgienger/tick/internal/ui/keys"
	"github.com/tgienger/tick/internal/ui/styles"
)

// field is one labelled text input. name matches the request struct field
// so validation messages land under the right input.
type field struct {
	name  string
	label string
	input textinput.Model
	err   string
}

func newField(name, label, placeholder string, secret bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{name: name, label: label, input: in}
}

// form is a vertical list of fields followed by a submit button
type form struct {
	title  string
	fields []field
	submit string
	focus  int // len(fields) means the button
	keys   keys.KeyMap
}

func newForm(title, submit string, fields ...field) form {
	f := form{title: title, fields: fields, submit: submit, keys: keys.DefaultKeyMap()}
	f.setFocus(0)
	return f
}

func (f *form) value(i int) string {
	return f.fields[i].input.Value()
}

func (f *form) setValue(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
		f.fields[i].err = ""
	}
	f.setFocus(0)
}

func (f *form) setFocus(i int) {
	f.focus = i
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

func (f *form) blur() {
	f.setFocus(-1)
}

func (f *form) onButton() bool {
	return f.focus == len(f.fields)
}

// move shifts focus by dir and reports whether it wrapped around
func (f *form) move(dir int) bool {
	n := len(f.fields) + 1
	next := f.focus + dir
	wrapped := next < 0 || next >= n
	f.setFocus((next + n) % n)
	return wrapped
}

// formResult says what a key press did to the form
type formResult int

const (
	formEdited formResult = iota
	formSubmit
	formWrapped
)

func (f *form) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Save):
		return formSubmit, nil

	case key.Matches(msg, f.keys.Enter):
		if f.onButton() || f.focus == len(f.fields)-1 {
			return formSubmit, nil
		}
		f.move(1)
		return formEdited, textinput.Blink

	case msg.Type == tea.KeyTab, msg.Type == tea.KeyDown:
		if f.move(1) {
			return formWrapped, nil
		}
		return formEdited, textinput.Blink

	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		if f.move(-1) {
			return formWrapped, nil
		}
		return formEdited, textinput.Blink
	}

	if f.focus < 0 || f.onButton() {
		return formEdited, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	f.fields[f.focus].err = ""
	return formEdited, cmd
}

func (f *form) clearErrors() {
	for i := range f.fields {
		f.fields[i].err = ""
	}
}

// setError puts msg under the named field
func (f *form) setError(name, msg string) {
	for i := range f.fields {
		if f.fields[i].name == name {
			f.fields[i].err = msg
			return
		}
	}
}

// showValidation copies field messages from err and reports whether err was
// a validation failure
func (f *form) showValidation(err error) bool {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	f.clearErrors()
	for _, fe := range verr.Fields {
		f.setError(fe.Field, fe.Message)
	}
	return true
}

func (f *form) view(s *styles.Styles, width int) string {
	inputWidth := clamp(width-6, 20, 50)

	rows := []string{s.Title.Render(f.title), ""}
	for i, fl := range f.fields {
		style := s.Input
		if i == f.focus {
			style = s.InputFocused
		}
		rows = append(rows, s.Label.Render(fl.label+":"), style.Width(inputWidth).Render(fl.input.View()))
		if fl.err != "" {
			rows = append(rows, s.FieldError.Render(fl.err))
		}
	}

	btn := s.Button
	if f.onButton() {
		btn = s.ButtonFocused
	}
	rows = append(rows, "", btn.Render(" "+f.submit+" "))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
