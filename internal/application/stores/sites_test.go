package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWebsites struct {
	websites  []site.Website
	err       error
	lastToken string
}

func (s *stubWebsites) ListWebsites(_ context.Context, token string) ([]site.Website, error) {
	s.lastToken = token
	return s.websites, s.err
}

type fixedToken string

func (f fixedToken) Token(context.Context) string { return string(f) }

func TestFetchWebsitesUsesToken(t *testing.T) {
	src := &stubWebsites{websites: []site.Website{{ID: "w1"}, {ID: "w2"}}}
	sel := NewSiteSelector(src, fixedToken("admin-tok"), testDeps(kv.NewMemoryStore()))

	require.NoError(t, sel.FetchWebsites(context.Background()))
	assert.Equal(t, "admin-tok", src.lastToken)
	assert.Len(t, sel.Websites(), 2)
}

func TestFetchWebsitesFailureKeepsList(t *testing.T) {
	src := &stubWebsites{websites: []site.Website{{ID: "w1"}}}
	sel := NewSiteSelector(src, nil, testDeps(kv.NewMemoryStore()))
	require.NoError(t, sel.FetchWebsites(context.Background()))

	src.err = errors.New("boom")
	assert.Error(t, sel.FetchWebsites(context.Background()))
	assert.Equal(t, []site.Website{{ID: "w1"}}, sel.Websites())
}

func TestSelectionScope(t *testing.T) {
	sel := NewSiteSelector(&stubWebsites{}, nil, testDeps(kv.NewMemoryStore()))
	assert.Equal(t, "", sel.SelectedWebsiteID())
	assert.Empty(t, sel.Scope())

	sel.SetSelectedWebsiteID("w2")
	assert.Equal(t, "w2", sel.SelectedWebsiteID())
	assert.Equal(t, "w2", sel.Scope().Get("websiteId"))

	sel.SetSelectedWebsiteID("")
	assert.Empty(t, sel.Scope())
}
