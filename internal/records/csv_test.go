package records

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Simple(t *testing.T) {
	rs := Parse("a,b\n1,2")

	require.Len(t, rs, 1)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, rs[0].Map())
	assert.Equal(t, []string{"a", "b"}, rs[0].Keys)
}

func TestParse_BOMAndCRLFMatchLF(t *testing.T) {
	lf := Parse("a,b\n1,2\n3,4\n")
	crlf := Parse("\uFEFFa,b\r\n1,2\r\n3,4\r\n")
	cr := Parse("a,b\r1,2\r3,4")

	assert.Equal(t, lf, crlf)
	assert.Equal(t, lf, cr)
	assert.Len(t, lf, 2)
}

func TestParse_QuotedFields(t *testing.T) {
	rs := Parse("name,note\n\"Smith, J.\",\"He said \"\"hi\"\"\"")

	require.Len(t, rs, 1)
	assert.Equal(t, "Smith, J.", rs[0].Get("name"))
	assert.Equal(t, `He said "hi"`, rs[0].Get("note"))
}

func TestParse_QuotedLineBreak(t *testing.T) {
	rs := Parse("name,note\n\"Jane\",\"line one\r\nline two\"\nBob,x")

	require.Len(t, rs, 2)
	assert.Equal(t, "line one\nline two", rs[0].Get("note"))
	assert.Equal(t, "Bob", rs[1].Get("name"))
}

func TestParse_HeadersNormalizedAndFieldsTrimmed(t *testing.T) {
	rs := Parse("  Client Email , STATE \n  jane@example.com  ,  Alabama ")

	require.Len(t, rs, 1)
	assert.Equal(t, "jane@example.com", rs[0].Get("client email"))
	assert.Equal(t, "Alabama", rs[0].Get("state"))
}

func TestParse_ShortRowPadded(t *testing.T) {
	rs := Parse("a,b,c\n1")

	require.Len(t, rs, 1)
	assert.Equal(t, map[string]string{"a": "1", "b": "", "c": ""}, rs[0].Map())
}

func TestParse_TrailingBlankRowsDropped(t *testing.T) {
	rs := Parse("a,b\n1,2\n\n , \n\n")
	assert.Len(t, rs, 1)
}

func TestParse_InteriorBlankRowKept(t *testing.T) {
	rs := Parse("a,b\n1,2\n\n3,4")

	require.Len(t, rs, 3)
	assert.Equal(t, "", rs[1].Get("a"))
	assert.Equal(t, "3", rs[2].Get("a"))
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "\uFEFF", "\r\n\r\n", "   "} {
		rs := Parse(in)
		assert.NotNil(t, rs, "input %q", in)
		assert.Empty(t, rs, "input %q", in)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	assert.Empty(t, Parse("a,b\n"))
}

func TestParse_UnterminatedQuote(t *testing.T) {
	rs := Parse("a,b\n\"open,1")

	require.Len(t, rs, 1)
	assert.Equal(t, "open,1", rs[0].Get("a"))
	assert.Equal(t, "", rs[0].Get("b"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReader_PropagatesReadErrors(t *testing.T) {
	_, err := NewReader(failingReader{}).ReadAll()
	assert.ErrorContains(t, err, "disk gone")
}

func TestReader_Headers(t *testing.T) {
	r := NewReader(strings.NewReader("Client Phone,State\n205-555-0100,AL"))
	assert.Nil(t, r.Headers())

	_, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"client phone", "state"}, r.Headers())
}
