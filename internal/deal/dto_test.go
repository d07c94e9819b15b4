// AngelaMos | 2026
// dto_test.go

package deal

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListParamsClamps(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		wantSkip  int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"unparseable", "limit=abc&skip=xyz", DefaultLimit, 0},
		{"explicit", "limit=10&skip=20", 10, 20},
		{"limit above max", "limit=1000", MaxLimit, 0},
		{"limit zero", "limit=0", 0, 0},
		{"negative", "limit=-5&skip=-3", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			p := ParseListParams(q)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantSkip, p.Skip)
		})
	}
}

func TestParseListParamsFilters(t *testing.T) {
	q := url.Values{
		"category":    {"cloud"},
		"accessLevel": {"locked"},
		"search":      {" credits "},
	}

	p := ParseListParams(q)
	assert.Equal(t, "cloud", p.Category)
	assert.Equal(t, AccessLocked, p.AccessLevel)
	assert.Equal(t, "credits", p.Search)
}

func TestDetailedSummaryCarriesActiveFlag(t *testing.T) {
	d := &Deal{ID: "1", Slug: "x", IsActive: false, PartnerURL: "https://p"}

	assert.Nil(t, ToSummary(d).IsActive)

	s := ToDetailedSummary(d)
	if assert.NotNil(t, s.IsActive) {
		assert.False(t, *s.IsActive)
	}
	assert.Equal(t, "https://p", s.PartnerURL)
}
