// Package bundle opens dotLottie containers: zip archives holding a
// manifest.json plus animations, themes, state machines and images.
//
// Both directory layouts are understood. Version 2 bundles use the short
// directories a/, t/, s/ and i/; version 1 bundles spell them out as
// animations/, themes/, states/ and images/.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
)

// Directory layout of one bundle version.
type layout struct {
	animations    string
	themes        string
	stateMachines string
	images        string
}

var (
	layoutV1 = layout{animations: "animations/", themes: "themes/", stateMachines: "states/", images: "images/"}
	layoutV2 = layout{animations: "a/", themes: "t/", stateMachines: "s/", images: "i/"}
)

// Loader implements ports.BundleLoader.
type Loader struct{}

// NewLoader returns a bundle loader.
func NewLoader() *Loader { return &Loader{} }

// Open reads the archive eagerly. It fails with domain.ErrLoad when data is
// not a zip archive or carries no valid manifest.
func (Loader) Open(data []byte) (ports.Bundle, error) {
	return Open(data)
}

// Bundle is an opened container. It is immutable and safe for concurrent
// reads.
type Bundle struct {
	manifest *domain.Manifest
	files    map[string][]byte
	layout   layout
}

// Open is Loader.Open returning the concrete type.
func Open(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: archive: %v", domain.ErrLoad, err)
	}

	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoad, f.Name, err)
		}
		files[strings.TrimPrefix(f.Name, "/")] = content
	}

	raw, ok := files["manifest.json"]
	if !ok {
		return nil, fmt.Errorf("%w: archive has no manifest.json", domain.ErrLoad)
	}
	manifest, err := domain.ParseManifest(raw)
	if err != nil {
		return nil, err
	}

	b := &Bundle{manifest: manifest, files: files, layout: detect(manifest, files)}
	return b, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// detect picks the layout from the manifest version, falling back to the
// directories present in the archive.
func detect(m *domain.Manifest, files map[string][]byte) layout {
	if strings.HasPrefix(m.Version, "2") {
		return layoutV2
	}
	if strings.HasPrefix(m.Version, "1") {
		return layoutV1
	}
	for name := range files {
		if strings.HasPrefix(name, layoutV2.animations) {
			return layoutV2
		}
	}
	return layoutV1
}

// Manifest returns the bundle manifest.
func (b *Bundle) Manifest() *domain.Manifest { return b.manifest }

// Version returns 1 or 2, the directory layout in use.
func (b *Bundle) Version() int {
	if b.layout == layoutV2 {
		return 2
	}
	return 1
}

// Animation returns the animation document called id with its image assets
// inlined as data URIs.
func (b *Bundle) Animation(id string) ([]byte, error) {
	raw, err := b.entry(b.layout.animations, id)
	if err != nil {
		return nil, err
	}
	return b.inlineImages(raw)
}

// Theme returns the theme document called id.
func (b *Bundle) Theme(id string) ([]byte, error) {
	return b.entry(b.layout.themes, id)
}

// StateMachine returns the state machine definition called id.
func (b *Bundle) StateMachine(id string) ([]byte, error) {
	return b.entry(b.layout.stateMachines, id)
}

func (b *Bundle) entry(dir, id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, fmt.Errorf("%w: invalid entry id %q", domain.ErrLoad, id)
	}
	name := dir + id + ".json"
	data, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in bundle", domain.ErrLoad, name)
	}
	return data, nil
}

// inlineImages replaces every asset path that points into the image
// directory with a base64 data URI. Documents without image assets are
// returned untouched.
func (b *Bundle) inlineImages(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: animation: %v", domain.ErrLoad, err)
	}
	assets, _ := doc["assets"].([]any)

	changed := false
	for _, a := range assets {
		asset, ok := a.(map[string]any)
		if !ok {
			continue
		}
		p, _ := asset["p"].(string)
		if p == "" || strings.HasPrefix(p, "data:") {
			continue
		}
		if embedded, _ := asset["e"].(float64); embedded == 1 {
			continue
		}
		name := b.layout.images + path.Base(p)
		img, ok := b.files[name]
		if !ok {
			return nil, fmt.Errorf("%w: image %s not found in bundle", domain.ErrLoad, name)
		}
		asset["u"] = ""
		asset["p"] = dataURI(p, img)
		asset["e"] = 1
		changed = true
	}
	if !changed {
		return raw, nil
	}
	return json.Marshal(doc)
}

func dataURI(name string, content []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch ext {
	case "jpg":
		ext = "jpeg"
	case "svg":
		ext = "svg+xml"
	case "":
		ext = "png"
	}
	return "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// List returns the ids of kind declared by the manifest, sorted. With it
// a Bundle also serves as a ports.DefinitionSource.
func (b *Bundle) List(kind domain.EntryKind) ([]string, error) {
	var ids []string
	switch kind {
	case domain.EntryAnimation:
		for _, a := range b.manifest.Animations {
			ids = append(ids, a.ID)
		}
	case domain.EntryTheme:
		for _, t := range b.manifest.Themes {
			ids = append(ids, t.ID)
		}
	case domain.EntryStateMachine:
		for _, s := range b.manifest.StateMachines {
			ids = append(ids, s.ID)
		}
	default:
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrInvalidParameter, kind)
	}
	sort.Strings(ids)
	return ids, nil
}
