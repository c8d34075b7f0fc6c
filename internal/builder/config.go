package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

// SiteURLEnv overrides Config.SiteURL when set.
const SiteURLEnv = "NEWS_SITE_URL"

var ErrInvalidConfig = errors.New("invalid config")

// Config is everything the pipeline needs to know. Nothing is read from
// package-level state.
type Config struct {
	SiteTitle         string
	SiteDescription   string
	SiteURL           string
	DefaultAuthor     string
	Generator         string
	PostsDir          string
	OutputFile        string
	Minify            bool
	ChromaTheme       string
	ChromaLineNumbers bool
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		SiteTitle:       "Archives du Dormeur - News",
		SiteDescription: "Actualités du launcher Archives du Dormeur",
		SiteURL:         "https://example.com/news",
		DefaultAuthor:   "Archives du Dormeur",
		Generator:       "newsrss",
		PostsDir:        "posts",
		OutputFile:      "news.xml",
	}
}

type config struct {
	Site struct {
		Title       string `toml:"title"`
		Description string `toml:"description"`
		URL         string `toml:"url"`
		Author      string `toml:"author"`
	} `toml:"site"`
	Directories struct {
		Posts string `toml:"posts"`
	} `toml:"directories"`
	Output struct {
		File   string `toml:"file"`
		Minify bool   `toml:"minify"`
	} `toml:"output"`
	Build struct {
		ChromaTheme       string `toml:"chromaTheme"`
		ChromaLineNumbers bool   `toml:"chromaLineNumbers"`
	} `toml:"build"`
}

// ReadConfig layers the TOML file at path over DefaultConfig. Keys missing
// from the file keep their defaults. Relative posts and output paths are
// resolved against the directory holding the file.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()

	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %w", path, err)
	}

	raw := new(config)

	err = toml.Unmarshal(b, raw)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}

	setIfNotEmpty(&c.SiteTitle, raw.Site.Title)
	setIfNotEmpty(&c.SiteDescription, raw.Site.Description)
	setIfNotEmpty(&c.SiteURL, raw.Site.URL)
	setIfNotEmpty(&c.DefaultAuthor, raw.Site.Author)
	setIfNotEmpty(&c.PostsDir, raw.Directories.Posts)
	setIfNotEmpty(&c.OutputFile, raw.Output.File)
	setIfNotEmpty(&c.ChromaTheme, raw.Build.ChromaTheme)
	c.Minify = raw.Output.Minify
	c.ChromaLineNumbers = raw.Build.ChromaLineNumbers

	dir := filepath.Dir(path)
	c.PostsDir = resolvePath(dir, c.PostsDir)
	c.OutputFile = resolvePath(dir, c.OutputFile)

	return c, nil
}

// LoadEnv loads the given dotenv files into the process environment without
// overriding variables that are already set, then applies them to c.
// Missing files are ignored.
func (c *Config) LoadEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not load env file %q: %w", f, err)
		}
	}

	if v, ok := os.LookupEnv(SiteURLEnv); ok && v != "" {
		c.SiteURL = v
	}

	return nil
}

// Validate normalizes c and checks that every required field is usable.
func (c *Config) Validate() error {
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	err := validation.ValidateStruct(c,
		validation.Field(&c.SiteTitle, validation.Required),
		validation.Field(&c.SiteURL, validation.Required, is.URL),
		validation.Field(&c.DefaultAuthor, validation.Required),
		validation.Field(&c.Generator, validation.Required),
		validation.Field(&c.PostsDir, validation.Required),
		validation.Field(&c.OutputFile, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	return nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(dir, p)
}

func setIfNotEmpty(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
