// AngelaMos | 2026
// entity.go

package deal

import (
	"time"
)

type AccessLevel string

const (
	AccessPublic AccessLevel = "public"
	AccessLocked AccessLevel = "locked"
)

func (a AccessLevel) Valid() bool {
	return a == AccessPublic || a == AccessLocked
}

type Deal struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Slug        string      `db:"slug"`
	Description string      `db:"description"`
	PartnerName string      `db:"partner_name"`
	PartnerURL  string      `db:"partner_url"`
	Category    string      `db:"category"`
	AccessLevel AccessLevel `db:"access_level"`
	IsActive    bool        `db:"is_active"`
	Eligibility string      `db:"eligibility"`
	CTAText     string      `db:"cta_text"`
	CTAURL      string      `db:"cta_url"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (d *Deal) IsLocked() bool {
	return d.AccessLevel == AccessLocked
}

// Filter narrows a catalog listing. Only active deals are ever listed.
type Filter struct {
	Category    string
	AccessLevel AccessLevel
	Search      string
}
