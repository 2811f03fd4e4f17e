package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vowhq/vowctl/internal/wizard"
)

func testMachine(t *testing.T) *wizard.Machine {
	t.Helper()
	m, err := wizard.New([]wizard.Step{
		{
			Name:     "who",
			Title:    "About you",
			Fields:   []wizard.Field{{Name: "name", Label: "Name"}},
			Validate: wizard.Required("name", "name"),
		},
		{
			Name:   "where",
			Title:  "Your city",
			Fields: []wizard.Field{{Name: "city", Label: "City"}},
		},
	}, nil)
	require.NoError(t, err)
	return m
}

func typeText(m WizardModel, text string) WizardModel {
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return model.(WizardModel)
}

func TestWizardModelStoresTypedValues(t *testing.T) {
	machine := testMachine(t)
	m := NewWizardModel("Test flow", machine)

	m = typeText(m, "Jane")

	// Enter on the last field kicks off the async advance.
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(WizardModel)
	assert.NotNil(t, cmd)

	v, ok := machine.Value("name")
	require.True(t, ok)
	assert.Equal(t, "Jane", v)
}

func TestWizardModelAdvancesOnStepResult(t *testing.T) {
	machine := testMachine(t)
	m := NewWizardModel("Test flow", machine)
	machine.Set("name", "Jane")
	_, err := machine.Next(t.Context())
	require.NoError(t, err)

	model, _ := m.Update(stepResultMsg{advanced: true})
	m = model.(WizardModel)

	assert.Contains(t, m.View(), "Your city")
	assert.Contains(t, m.View(), "step 2 of 2")
}

func TestWizardModelShowsValidationErrors(t *testing.T) {
	machine := testMachine(t)
	m := NewWizardModel("Test flow", machine)

	// Empty name: the machine refuses and the error shows inline.
	advanced, err := machine.Next(t.Context())
	require.NoError(t, err)
	require.False(t, advanced)

	model, _ := m.Update(stepResultMsg{advanced: false})
	m = model.(WizardModel)
	assert.Contains(t, m.View(), "name is required")
}

func TestWizardModelFinishes(t *testing.T) {
	machine := testMachine(t)
	m := NewWizardModel("Test flow", machine)

	model, _ := m.Update(submitResultMsg{completed: true})
	m = model.(WizardModel)

	assert.True(t, m.IsFinished())
	assert.Contains(t, m.View(), "All done")
}
