// AngelaMos | 2026
// fixtures.go

package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carterperez-dev/perkhub/internal/deal"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Users  []UserFixture  `yaml:"users"`
	Deals  []DealFixture  `yaml:"deals"`
	Claims []ClaimFixture `yaml:"claims"`
}

type UserFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Verified bool   `yaml:"verified"`
	Role     string `yaml:"role"`
}

type DealFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	PartnerName string `yaml:"partnerName"`
	PartnerURL  string `yaml:"partnerUrl"`
	Category    string `yaml:"category"`
	AccessLevel string `yaml:"accessLevel"`
	IsActive    *bool  `yaml:"isActive"`
	Eligibility string `yaml:"eligibility"`
	CTAText     string `yaml:"ctaText"`
	CTAURL      string `yaml:"ctaUrl"`
}

// ClaimFixture submits a claim through the normal admission path, so a
// fixture can never bypass the verification gate.
type ClaimFixture struct {
	Email string `yaml:"email"`
	Deal  string `yaml:"deal"`
}

func (f DealFixture) toDeal() *deal.Deal {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}

	return &deal.Deal{
		Title:       f.Title,
		Slug:        f.Slug,
		Description: f.Description,
		PartnerName: f.PartnerName,
		PartnerURL:  f.PartnerURL,
		Category:    f.Category,
		AccessLevel: deal.AccessLevel(f.AccessLevel),
		IsActive:    active,
		Eligibility: f.Eligibility,
		CTAText:     f.CTAText,
		CTAURL:      f.CTAURL,
	}
}

// Default returns the bundled demo data set.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	slugs := make(map[string]struct{}, len(f.Deals))
	for i, d := range f.Deals {
		if d.Slug == "" || d.Title == "" {
			return fmt.Errorf("fixtures: deal %d needs a title and slug", i)
		}
		if d.AccessLevel != "" && !deal.AccessLevel(d.AccessLevel).Valid() {
			return fmt.Errorf("fixtures: deal %q has access level %q", d.Slug, d.AccessLevel)
		}
		slugs[d.Slug] = struct{}{}
	}

	emails := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return fmt.Errorf("fixtures: user %d needs an email and password", i)
		}
		emails[u.Email] = struct{}{}
	}

	for _, c := range f.Claims {
		if _, ok := emails[c.Email]; !ok {
			return fmt.Errorf("fixtures: claim references unknown user %q", c.Email)
		}
		if _, ok := slugs[c.Deal]; !ok {
			return fmt.Errorf("fixtures: claim references unknown deal %q", c.Deal)
		}
	}

	return nil
}
