package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type endFlow struct{}

func (endFlow) Execute(context.Context, *Step) error { return nil }
func (endFlow) PrepareStep(*Step) *Step            { return nil }

func TestActionTableCheck(t *testing.T) {
	view := ViewFunc(func(*Step) string { return "v" })

	ok := NewActionTable("status", "start").
		HandleView("status", view).
		HandleView("start", view).
		HandlePostStep("status", endFlow{})
	assert.NoError(t, ok.Check())

	unknown := NewActionTable("status").
		HandleView("status", view).
		HandlePostStep("dance", endFlow{})
	assert.ErrorIs(t, unknown.Check(), ErrUnknownAction)

	missing := NewActionTable("status", "start").HandleView("status", view)
	assert.ErrorIs(t, missing.Check(), ErrMissingView)
}

func TestActionTableDispatch(t *testing.T) {
	table := NewActionTable("status", "start").
		HandleView("status", ViewFunc(func(*Step) string { return "status view" })).
		HandleView("start", ViewFunc(func(*Step) string { return "start view" })).
		HandlePostStep("status", endFlow{})
	require.NoError(t, table.Check())

	status, err := NewChain("u1").push(NewOptions(), "status")
	require.NoError(t, err)
	start, err := NewChain("u1").push(NewOptions(), "start")
	require.NoError(t, err)
	other, err := NewChain("u1").push(NewOptions(), "dance")
	require.NoError(t, err)

	assert.Equal(t, "status view", table.View(status))
	assert.Equal(t, "start view", table.View(start))
	assert.Equal(t, WrongInputView, table.View(other))
	assert.Equal(t, WrongInputView, table.View(nil))

	assert.NotNil(t, table.PostStepAction(status))
	assert.Nil(t, table.PostStepAction(start))
	assert.Nil(t, table.PostStepAction(nil))

	assert.True(t, table.Known("start"))
	assert.False(t, table.Known("dance"))
}
