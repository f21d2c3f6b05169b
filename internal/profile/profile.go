// Package profile holds the resume and project data shown next to the blog.
package profile

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/folio/pkg/config"
)

var httpURLRe = regexp.MustCompile(`^https?://`)

// Experience is one position in the work history.
type Experience struct {
	Company   string   `yaml:"company" json:"company"`
	Position  string   `yaml:"position" json:"position"`
	Location  string   `yaml:"location" json:"location"`
	StartDate string   `yaml:"start_date" json:"startDate"`
	EndDate   string   `yaml:"end_date" json:"endDate"`
	Points    []string `yaml:"points" json:"points"`
}

// Validate validates an experience entry.
func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Company, validation.Required),
		validation.Field(&e.Position, validation.Required),
		validation.Field(&e.StartDate, validation.Required),
	)
}

// Work is a showcased project.
type Work struct {
	Name        string `yaml:"name" json:"name"`
	Href        string `yaml:"href" json:"href"`
	Description string `yaml:"description" json:"description"`
	Image       string `yaml:"image" json:"image"`
}

// Validate validates a work entry.
func (w Work) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Name, validation.Required),
		validation.Field(&w.Href, validation.Required, validation.Match(httpURLRe).Error("must be an http(s) URL")),
	)
}

// Profile is the full data file.
type Profile struct {
	Experience []Experience `yaml:"experience" json:"experience"`
	Works      []Work       `yaml:"works" json:"works"`
}

// Validate validates every entry.
func (p *Profile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Experience),
		validation.Field(&p.Works),
	)
}

// Load reads and validates a profile YAML file. The text is taken as is,
// so prices and shell snippets in descriptions survive.
func Load(path string) (*Profile, error) {
	p := &Profile{}
	if err := pkgconfig.LoadLiteral(path, p); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Works == nil {
		p.Works = []Work{}
	}
	return p, nil
}
