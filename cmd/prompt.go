package cmd

import (
	"github.com/charmbracelet/huh"
)

// SelectOption is one choice in a multi-select prompt.
type SelectOption[T any] struct {
	Label string
	Value T
}

// ask runs fields as a single-group form with key hints shown.
func ask(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).Run()
}

// promptString asks for a line of text. An empty answer returns defaultVal,
// which is shown as the placeholder.
func promptString(title, description, defaultVal string) (string, error) {
	var value string
	in := huh.NewInput().Title(title).Description(description).Placeholder(defaultVal).Value(&value)
	if err := ask(in); err != nil {
		return "", err
	}
	if value == "" {
		return defaultVal, nil
	}
	return value, nil
}

// promptPassword asks for a secret without echoing it.
func promptPassword(title, description string) (string, error) {
	var value string
	in := huh.NewInput().Title(title).Description(description).EchoMode(huh.EchoModePassword).Value(&value)
	if err := ask(in); err != nil {
		return "", err
	}
	return value, nil
}

// promptMultiSelect returns the values the user left ticked; preselected
// values start ticked.
func promptMultiSelect[T comparable](title, description string, options []SelectOption[T], preselected []T) ([]T, error) {
	ticked := make(map[T]bool, len(preselected))
	for _, v := range preselected {
		ticked[v] = true
	}
	opts := make([]huh.Option[T], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value).Selected(ticked[o.Value]))
	}

	var values []T
	ms := huh.NewMultiSelect[T]().Title(title).Description(description).Options(opts...).Value(&values)
	if err := ask(ms); err != nil {
		return nil, err
	}
	return values, nil
}

// promptConfirm asks a yes/no question.
func promptConfirm(title string, defaultYes bool) (bool, error) {
	value := defaultYes
	c := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&value)
	if err := ask(c); err != nil {
		return false, err
	}
	return value, nil
}
