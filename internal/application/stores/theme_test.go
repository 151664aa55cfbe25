package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettings struct {
	settings api.Settings
	err      error
}

func (s *stubSettings) GetSettings(context.Context) (api.Settings, error) {
	return s.settings, s.err
}

func TestThemeDefaultsApplied(t *testing.T) {
	doc := templates.NewDocument()
	store := NewThemeStore(&stubSettings{}, doc, logging.NewDiscardLogger())

	assert.Equal(t, site.ThemeSettings{PrimaryColor: "#0d9488", PrimaryFont: "font-sans"}, store.Theme())
	assert.Equal(t, ":root{--primary-color:#0d9488;}", doc.CSS())
	assert.Equal(t, "font-sans", doc.ClassAttr())
}

func TestFetchThemeAppliesSettings(t *testing.T) {
	doc := templates.NewDocument()
	src := &stubSettings{settings: api.Settings{"primary_color": "#ff0000", "primary_font": "font-serif"}}
	store := NewThemeStore(src, doc, logging.NewDiscardLogger())

	require.NoError(t, store.FetchTheme(context.Background()))
	assert.Equal(t, "#ff0000", store.Theme().PrimaryColor)
	assert.Equal(t, ":root{--primary-color:#ff0000;}", doc.CSS())
	assert.Equal(t, "font-serif", doc.ClassAttr())
}

func TestFetchThemeRejectsInjectedColor(t *testing.T) {
	doc := templates.NewDocument()
	src := &stubSettings{settings: api.Settings{
		"primary_color": "red;}body{display:none}@import url(//evil.example/x.css);:root{x:y",
		"primary_font":  "font-mono",
	}}
	store := NewThemeStore(src, doc, logging.NewDiscardLogger())

	require.NoError(t, store.FetchTheme(context.Background()))
	assert.Equal(t, site.DefaultPrimaryColor, store.Theme().PrimaryColor)
	assert.Equal(t, ":root{--primary-color:#0d9488;}", doc.CSS())
	assert.NotContains(t, doc.CSS(), "@import")
	assert.Equal(t, "font-mono", doc.ClassAttr())
}

func TestFetchThemeFillsMissingFields(t *testing.T) {
	src := &stubSettings{settings: api.Settings{"primary_color": "#222222", "primary_font": "papyrus"}}
	store := NewThemeStore(src, templates.NewDocument(), logging.NewDiscardLogger())

	require.NoError(t, store.FetchTheme(context.Background()))
	assert.Equal(t, site.ThemeSettings{PrimaryColor: "#222222", PrimaryFont: "font-sans"}, store.Theme())
}

func TestThemeFallbackOnFailure(t *testing.T) {
	src := &stubSettings{err: errors.New("unreachable")}
	store := NewThemeStore(src, templates.NewDocument(), logging.NewDiscardLogger())

	err := store.FetchTheme(context.Background())
	assert.Error(t, err)
	assert.Equal(t, site.DefaultTheme(), store.Theme())

	src.err = nil
	src.settings = api.Settings{"primary_color": "#abcdef", "primary_font": "font-mono"}
	require.NoError(t, store.FetchTheme(context.Background()))

	src.err = errors.New("down again")
	assert.Error(t, store.FetchTheme(context.Background()))
	assert.Equal(t, site.ThemeSettings{PrimaryColor: "#abcdef", PrimaryFont: "font-mono"}, store.Theme())
	assert.Equal(t, "font-mono", store.Document().ClassAttr())
}
