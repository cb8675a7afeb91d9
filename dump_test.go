package calyx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	doc := NewDocument()
	section := NewElement(KindContainer)
	button := NewElement(KindButton)
	input := NewElement(KindInput)
	doc.Root().AppendChild(section)
	section.AppendChild(button)
	section.AppendChild(input)

	button.SetDisabled(true)
	input.SetTabIndex(2)
	require.True(t, doc.Focus(input, FocusOptions{}))

	out := doc.Dump()
	assert.Contains(t, out, "button#")
	assert.Contains(t, out, "[disabled]")
	assert.Contains(t, out, "[tabindex=2]")
	assert.Contains(t, out, "[focused]")
}

func TestDumpHidden(t *testing.T) {
	doc := NewDocument()
	el := NewElement(KindText)
	el.SetVisible(false)
	doc.Root().AppendChild(el)

	assert.Contains(t, doc.Dump(), "[hidden]")
}
