// AngelaMos | 2026
// dto.go

package deal

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type ListParams struct {
	Filter
	Limit int
	Skip  int
}

// ParseListParams reads the listing query string. Absent or unparseable
// limit falls back to DefaultLimit; explicit values are clamped to
// [0, MaxLimit]. skip is clamped to >= 0.
func ParseListParams(q url.Values) ListParams {
	return ListParams{
		Filter: Filter{
			Category:    strings.TrimSpace(q.Get("category")),
			AccessLevel: AccessLevel(strings.TrimSpace(q.Get("accessLevel"))),
			Search:      strings.TrimSpace(q.Get("search")),
		},
		Limit: parseLimit(q.Get("limit")),
		Skip:  parseSkip(q.Get("skip")),
	}
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}

func parseSkip(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return ClampSkip(n)
}

func ClampLimit(n int) int {
	return min(max(n, 0), MaxLimit)
}

func ClampSkip(n int) int {
	return max(n, 0)
}

type DealResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	PartnerName string      `json:"partnerName"`
	PartnerURL  string      `json:"partnerUrl,omitempty"`
	Category    string      `json:"category"`
	AccessLevel AccessLevel `json:"accessLevel"`
	IsActive    bool        `json:"isActive"`
	Eligibility string      `json:"eligibility,omitempty"`
	CTAText     string      `json:"ctaText"`
	CTAURL      string      `json:"ctaUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func ToDealResponse(d *Deal) DealResponse {
	return DealResponse{
		ID:          d.ID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		PartnerName: d.PartnerName,
		PartnerURL:  d.PartnerURL,
		Category:    d.Category,
		AccessLevel: d.AccessLevel,
		IsActive:    d.IsActive,
		Eligibility: d.Eligibility,
		CTAText:     d.CTAText,
		CTAURL:      d.CTAURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Summary is the denormalized deal view attached to a claim.
type Summary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	PartnerName string      `json:"partnerName"`
	PartnerURL  string      `json:"partnerUrl,omitempty"`
	Category    string      `json:"category"`
	AccessLevel AccessLevel `json:"accessLevel"`
	Eligibility string      `json:"eligibility,omitempty"`
	CTAText     string      `json:"ctaText"`
	CTAURL      string      `json:"ctaUrl"`
	IsActive    *bool       `json:"isActive,omitempty"`
}

func ToSummary(d *Deal) *Summary {
	return &Summary{
		ID:          d.ID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		PartnerName: d.PartnerName,
		Category:    d.Category,
		AccessLevel: d.AccessLevel,
		CTAText:     d.CTAText,
		CTAURL:      d.CTAURL,
	}
}

// ToDetailedSummary also carries the fields a claim history view shows,
// including whether the deal is still active.
func ToDetailedSummary(d *Deal) *Summary {
	s := ToSummary(d)
	s.PartnerURL = d.PartnerURL
	s.Eligibility = d.Eligibility
	active := d.IsActive
	s.IsActive = &active
	return s
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Skip    int   `json:"skip"`
	HasMore bool  `json:"hasMore"`
}

type ListResponse struct {
	Deals      []DealResponse `json:"deals"`
	Pagination Pagination     `json:"pagination"`
}
