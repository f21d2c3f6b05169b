package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/feed"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// siteDomainRe accepts an http(s) origin with no trailing slash.
var siteDomainRe = regexp.MustCompile(`^https?://[^\s/]+(/[^\s]*[^\s/])?$`)

// Config is the folio server configuration, usually read from config/config.yaml.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Posts   PostsConfig       `yaml:"posts"`
	Profile ProfileConfig     `yaml:"profile"`
	Static  StaticConfig      `yaml:"static"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate checks every section and reports the first failure.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Site, &c.Posts, &c.Profile, &c.SQLite, &c.Auth} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds the log level and listener settings.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig is the listener for the site, the API and the feed.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address is the listen address for http.Server.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig describes the public site, used for feed links.
type SiteConfig struct {
	Domain      string `yaml:"domain"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Domain, validation.Required,
			validation.Match(siteDomainRe).Error("must be an http(s) URL without a trailing slash")),
		validation.Field(&c.Title, validation.Required),
	)
}

// Channel returns the feed channel for the site.
func (c *SiteConfig) Channel() feed.Channel {
	return feed.Channel{Domain: c.Domain, Title: c.Title, Description: c.Description}
}

// PostsConfig holds the posts directory settings.
//
// Watch reloads the catalog when files change; it is meant for local
// writing and is off by default. Sanitize runs rendered HTML through an
// allow-list, which strips raw HTML embedded in posts.
type PostsConfig struct {
	Path     string `yaml:"path"`
	Watch    bool   `yaml:"watch"`
	Sanitize bool   `yaml:"sanitize"`
}

// Validate validates the posts configuration.
func (c *PostsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ProfileConfig points at the resume and projects data file.
type ProfileConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the profile configuration.
func (c *ProfileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StaticConfig points at the directory served under /static. Empty disables it.
type StaticConfig struct {
	Path string `yaml:"path"`
}

// SQLiteConfig locates the search index database. It is rebuilt from the
// posts directory, so deleting it is safe.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): admin routes and the event stream are open.
//   - "token": they require "Authorization: Bearer <token>".
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate defaults an empty mode to disabled.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled reports whether admin routes need the token.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns the configuration used when no file overrides it.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Domain: "http://localhost:8080",
			Title:  "Blog",
		},
		Posts: PostsConfig{
			Path: "./posts",
		},
		Profile: ProfileConfig{
			Path: "./config/profile.yaml",
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
