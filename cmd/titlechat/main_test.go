package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"titlechat/internal/conversation"
)

func TestPlainText(t *testing.T) {
	got := plainText(`📄 <strong>MVT-5-13 Form (Alabama)</strong><br><a href="https://x.test/f.pdf" target="_blank">Open Form</a>`)
	assert.Equal(t, "📄 MVT-5-13 Form (Alabama)\nOpen Form (https://x.test/f.pdf)", got)

	got = plainText("I noticed:<br><ul><li><strong>A</strong></li><li><strong>B</strong></li></ul>Want links?")
	assert.Equal(t, "I noticed:\n\n  • A\n\n  • B\n\nWant links?", got)

	assert.Equal(t, `Tom & "Jerry"`, plainText("Tom &amp; &quot;Jerry&quot;"))
}

func TestPrinter_NumbersChoices(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf}
	p.print([]conversation.OutboundMessage{
		{Text: "Pick one", Region: "Alabama"},
		{Choices: []string{"Ask Me Anything", "Lien Release"}},
	})

	assert.Equal(t, "  [region: Alabama]\nTom: Pick one\n  1) Ask Me Anything\n  2) Lien Release\n", buf.String())

	label, ok := p.choiceFor("2")
	assert.True(t, ok)
	assert.Equal(t, "Lien Release", label)

	for _, in := range []string{"0", "3", "2x", "two", ""} {
		_, ok := p.choiceFor(in)
		assert.False(t, ok, "input %q", in)
	}
}
