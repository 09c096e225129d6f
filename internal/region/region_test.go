package region

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"ca":          "California",
		" TX ":        "Texas",
		"ALABAM":      "Alabama",
		"new y":       "New York",
		"Timbuktu":    "Timbuktu",
		"timbuktu":    "Timbuktu",
		"north pole":  "North Pole",
		"":            "",
		"   ":         "",
		"West Virgin": "West Virginia",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestAbbreviationAndSlug(t *testing.T) {
	assert.Equal(t, "NY", Abbreviation("new york"))
	assert.Equal(t, "", Abbreviation("Timbuktu"))
	assert.Equal(t, "new-york", Slug(" New   York "))
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{
		"new-hampshire.yaml", "new-hampshire/index.yaml",
		"nh.yaml", "nh/index.yaml",
	}, Candidates("New Hampshire"))

	assert.Equal(t, []string{"texas.yaml", "texas/index.yaml", "tx.yaml", "tx/index.yaml"}, Candidates("TX"))
	assert.Equal(t, []string{"timbuktu.yaml", "timbuktu/index.yaml"}, Candidates("Timbuktu"))
	assert.Nil(t, Candidates(" "))
}

func TestDefault_BuiltInBundles(t *testing.T) {
	reg, err := Default(nil, zap.NewNop())
	require.NoError(t, err)

	al, ok := reg.Resolve(context.Background(), "Alabama")
	require.True(t, ok)
	assert.Equal(t, "Alabama", al.Name)
	assert.Equal(t, []string{"mvt-5-13", "mvt-41-1", "mvt-12-1", "mvt-5-7", "mvt-5-6"}, al.Forms.Codes())
	assert.Empty(t, al.MissingTopics())
	assert.Contains(t, al.TopicResponse("Lien Release"), "lien release letter")
	assert.Len(t, al.Keywords, 5)

	ca, ok := reg.Resolve(context.Background(), "california")
	require.True(t, ok)
	f, ok := ca.Forms.Get("reg-227")
	require.True(t, ok)
	assert.Contains(t, f.Link(), "reg-227")
	assert.Equal(t, TopicAskAnything, ca.MenuTopics()[1])
	assert.Equal(t, []string{"alabama", "california"}, reg.Names())
}

func TestResolve_UnknownRegionDegrades(t *testing.T) {
	reg, err := Default(nil, zap.NewNop())
	require.NoError(t, err)

	b, ok := reg.Resolve(context.Background(), "Texas")
	assert.False(t, ok)
	assert.Nil(t, b)
	assert.Equal(t, FallbackTopics, b.MenuTopics())
	assert.Equal(t, ComingSoon, b.TopicResponse("General Information"))
	assert.Nil(t, b.Library())
}

func TestResolve_LoaderCandidateOrder(t *testing.T) {
	dir := fstest.MapFS{
		"tx/index.yaml": {Data: []byte("name: Texas\norder: [Ask Me Anything, Registration]\ntopics:\n  Registration: Visit the county office.\n")},
		"tx.yaml":       {Data: []byte("name: [broken")},
	}
	reg := NewRegistry(DirLoader{FS: dir}, zap.NewNop())

	b, ok := reg.Resolve(context.Background(), "Texas")
	require.True(t, ok)
	assert.Equal(t, "Texas", b.Name)
	assert.Equal(t, "Visit the county office.", b.TopicResponse("Registration"))
	assert.Equal(t, ComingSoon, b.TopicResponse("Lien Release"))
	assert.Equal(t, 0, b.Library().Len())
}

type recordingLoader struct{ tried []string }

func (l *recordingLoader) Load(_ context.Context, loc string) (Provider, error) {
	l.tried = append(l.tried, loc)
	if loc == "ca.yaml" {
		return ProviderFunc(func() (*Bundle, error) { return &Bundle{Name: "California"}, nil }), nil
	}
	return nil, errors.New("not here")
}

func TestResolve_FactoryProvider(t *testing.T) {
	loader := &recordingLoader{}
	reg := NewRegistry(loader, zap.NewNop())

	b, ok := reg.Resolve(context.Background(), "California")
	require.True(t, ok)
	assert.Equal(t, "California", b.Name)
	assert.Equal(t, []string{"california.yaml", "california/index.yaml", "ca.yaml"}, loader.tried)
}

func TestRegister_OverridesAndFailingProviderFallsThrough(t *testing.T) {
	reg := NewRegistry(nil, zap.NewNop())
	reg.Register("Ohio", Static(&Bundle{Name: "Ohio"}))
	b, ok := reg.Resolve(context.Background(), "OHIO")
	require.True(t, ok)
	assert.Equal(t, "Ohio", b.Name)

	reg.Register("Ohio", ProviderFunc(func() (*Bundle, error) { return nil, errors.New("bad") }))
	_, ok = reg.Resolve(context.Background(), "Ohio")
	assert.False(t, ok)
	assert.Equal(t, []string{"ohio"}, reg.Names())
}

func TestParse_RequiresName(t *testing.T) {
	_, err := Parse([]byte("order: [a]"))
	assert.Error(t, err)
}
