// Package i18n provides translated user-visible messages.  Catalogs are
// flat key/value YAML files embedded at build time, one per language.  A
// missing key falls back to the default language; a key missing there too
// is returned verbatim so the UI always has something to show.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves message keys against the loaded catalogs.
type Translator struct {
	fallback string
	catalogs map[string]map[string]string
}

// New loads every embedded catalog and returns a Translator whose fallback
// language is the given one.  An unknown fallback language is an error
// because every translation could otherwise silently degrade to raw keys.
func New(fallback string) (*Translator, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	catalogs := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		lang := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		raw, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, err
		}
		cat := map[string]string{}
		if err := yaml.Unmarshal(raw, &cat); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", e.Name(), err)
		}
		catalogs[lang] = cat
	}
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("no catalog for fallback language %q", fallback)
	}
	return &Translator{fallback: fallback, catalogs: catalogs}, nil
}

// Translate resolves key in the given language, then in the fallback
// language, and finally returns the key itself.
func (t *Translator) Translate(lang, key string) string {
	if cat, ok := t.catalogs[lang]; ok {
		if msg, ok := cat[key]; ok {
			return msg
		}
	}
	if msg, ok := t.catalogs[t.fallback][key]; ok {
		return msg
	}
	return key
}

// Languages lists the loaded catalog languages.
func (t *Translator) Languages() []string {
	out := make([]string, 0, len(t.catalogs))
	for lang := range t.catalogs {
		out = append(out, lang)
	}
	return out
}
