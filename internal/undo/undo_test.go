package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal(t *testing.T) {
	var b Bridge = &Journal{}
	b.BeforeChange("graph", "Connect a.out -> b.in")
	b.BeforeChange("graph", "Delete node c")

	j := b.(*Journal)
	assert.Equal(t, []string{"Connect a.out -> b.in", "Delete node c"}, j.Labels())
	assert.Equal(t, Entry{Scope: "graph", Label: "Delete node c"}, j.Entries()[1])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop{}.BeforeChange("graph", "anything") })
}
