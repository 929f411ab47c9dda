package bundle_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/adapters/bundle"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.BundleLoader     = bundle.Loader{}
	_ ports.Bundle           = (*bundle.Bundle)(nil)
	_ ports.DefinitionSource = (*bundle.Bundle)(nil)
)

func archive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const manifestV2 = `{
  "version": "2",
  "generator": "test",
  "initial": {"animation": "intro"},
  "animations": [{"id": "intro"}, {"id": "button"}],
  "themes": [{"id": "dark"}],
  "state_machines": [{"id": "sm"}]
}`

func TestOpenV2(t *testing.T) {
	b, err := bundle.Open(archive(t, map[string]string{
		"manifest.json": manifestV2,
		"a/intro.json":  testutils.Animation,
		"a/button.json": testutils.Animation,
		"t/dark.json":   `{"rules": []}`,
		"s/sm.json":     `{"initial": "a", "states": [{"name": "a"}]}`,
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, b.Version())
	assert.Equal(t, "intro", b.Manifest().InitialAnimation())

	anim, err := b.Animation("intro")
	require.NoError(t, err)
	assert.JSONEq(t, testutils.Animation, string(anim))

	theme, err := b.Theme("dark")
	require.NoError(t, err)
	assert.JSONEq(t, `{"rules": []}`, string(theme))

	_, err = b.StateMachine("sm")
	require.NoError(t, err)

	ids, err := b.List(domain.EntryAnimation)
	require.NoError(t, err)
	assert.Equal(t, []string{"button", "intro"}, ids)
}

func TestOpenV1(t *testing.T) {
	b, err := bundle.NewLoader().Open(archive(t, map[string]string{
		"manifest.json":         `{"version": "1", "animations": [{"id": "intro"}]}`,
		"animations/intro.json": testutils.Animation,
		"themes/light.json":     `{"rules": []}`,
		"states/sm.json":        `{}`,
	}))
	require.NoError(t, err)

	_, err = b.Animation("intro")
	assert.NoError(t, err)
	_, err = b.Theme("light")
	assert.NoError(t, err)
	_, err = b.StateMachine("sm")
	assert.NoError(t, err)
}

func TestLayoutDetectedFromDirectories(t *testing.T) {
	b, err := bundle.Open(archive(t, map[string]string{
		"manifest.json": `{"animations": [{"id": "x"}]}`,
		"a/x.json":      `{}`,
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Version())
}

func TestImagesAreInlined(t *testing.T) {
	doc := `{"fr": 30, "ip": 0, "op": 10, "w": 10, "h": 10,
	  "assets": [{"id": "img_0", "u": "/images/", "p": "logo.png", "e": 0}, {"id": "comp"}]}`
	b, err := bundle.Open(archive(t, map[string]string{
		"manifest.json": `{"version": "2", "animations": [{"id": "x"}]}`,
		"a/x.json":      doc,
		"i/logo.png":    "PNG!",
	}))
	require.NoError(t, err)

	raw, err := b.Animation("x")
	require.NoError(t, err)

	var out struct {
		Assets []map[string]any `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Assets, 2)
	assert.Equal(t, "data:image/png;base64,UE5HIQ==", out.Assets[0]["p"])
	assert.Equal(t, "", out.Assets[0]["u"])
	assert.Equal(t, 1.0, out.Assets[0]["e"])
	assert.NotContains(t, out.Assets[1], "p")
}

func TestMissingImageFailsTheAnimation(t *testing.T) {
	b, err := bundle.Open(archive(t, map[string]string{
		"manifest.json": `{"version": "2", "animations": [{"id": "x"}]}`,
		"a/x.json":      `{"assets": [{"id": "img", "p": "gone.jpg"}]}`,
	}))
	require.NoError(t, err)

	_, err = b.Animation("x")
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestOpenErrors(t *testing.T) {
	_, err := bundle.Open([]byte("not a zip"))
	assert.ErrorIs(t, err, domain.ErrLoad)

	_, err = bundle.Open(archive(t, map[string]string{"a/x.json": `{}`}))
	assert.ErrorIs(t, err, domain.ErrLoad)

	_, err = bundle.Open(archive(t, map[string]string{"manifest.json": `{"animations": []}`}))
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestUnknownEntries(t *testing.T) {
	b, err := bundle.Open(archive(t, map[string]string{
		"manifest.json": manifestV2,
		"a/intro.json":  `{}`,
	}))
	require.NoError(t, err)

	for _, id := range []string{"missing", "", "../manifest"} {
		_, err := b.Animation(id)
		assert.ErrorIs(t, err, domain.ErrLoad, id)
	}
	_, err = b.Theme("dark")
	assert.True(t, strings.Contains(err.Error(), "t/dark.json"))

	_, err = b.List("bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
