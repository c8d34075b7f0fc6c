package builder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlexanderRichey/newsrss/internal/frontmatter"
	"github.com/AlexanderRichey/newsrss/internal/markdown"
	"github.com/AlexanderRichey/newsrss/mini"
)

const _ReadWrite = 0666

// Builder turns a posts directory into an RSS feed file.
type Builder interface {
	Build() error
}

// Logger is the subset of a leveled logger the builder reports to.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MetadataParser splits a document into its front-matter and body.
type MetadataParser interface {
	Parse(src []byte) (frontmatter.Metadata, []byte, error)
}

// MarkdownRenderer converts a markdown body to HTML.
type MarkdownRenderer interface {
	Render(src []byte) ([]byte, error)
}

type builderImpl struct {
	config   *Config
	log      Logger
	meta     MetadataParser
	markdown MarkdownRenderer
	rss      *renderer
	mini     *mini.Creator
	now      func() time.Time
}

// New creates a new Builder instance. It validates c and initializes the
// dependencies needed to do the work of building. A nil logger discards
// all messages.
func New(c *Config, logger Logger) (Builder, error) {
	b, err := newBuilder(c, logger)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func newBuilder(c *Config, logger Logger) (*builderImpl, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = nopLogger{}
	}

	rss, err := newRenderer()
	if err != nil {
		return nil, err
	}

	b := &builderImpl{
		config: c,
		log:    logger,
		meta:   frontmatter.New(),
		markdown: markdown.New(markdown.Options{
			ChromaTheme:       c.ChromaTheme,
			ChromaLineNumbers: c.ChromaLineNumbers,
		}),
		rss: rss,
		now: time.Now,
	}

	if c.Minify {
		b.mini = mini.New()
	}

	return b, nil
}

// Build loads, sorts, renders and writes the feed. The output file is only
// touched once every post has been loaded and the document rendered.
func (b *builderImpl) Build() error {
	t0 := b.now()

	xml, n, err := b.generate(t0)
	if err != nil {
		return err
	}

	err = b.write(xml)
	if err != nil {
		return err
	}

	b.log.Info("generated feed", "path", b.config.OutputFile, "items", n, "elapsed", time.Since(t0).String())

	return nil
}

func (b *builderImpl) generate(now time.Time) (string, int, error) {
	posts, err := b.loadPosts()
	if err != nil {
		return "", 0, err
	}

	if len(posts) == 0 {
		b.log.Warn("no posts found, feed will be empty", "dir", b.config.PostsDir)
	}

	sortPosts(posts)

	xml, err := b.rss.render(channel{
		Title:       b.config.SiteTitle,
		Description: b.config.SiteDescription,
		URL:         b.config.SiteURL,
		Generator:   b.config.Generator,
	}, posts, now)
	if err != nil {
		return "", 0, err
	}

	return xml, len(posts), nil
}

func (b *builderImpl) loadPosts() ([]*Post, error) {
	dir := b.config.PostsDir

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPostsDirNotFound, dir)
	} else if err != nil {
		return nil, fmt.Errorf("could not resolve directory %q: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrNotDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read posts dir %q: %w", dir, err)
	}

	postList := make([]*Post, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}

		p, err := b.loadPost(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		postList = append(postList, p)
	}

	return postList, nil
}

func (b *builderImpl) loadPost(path string) (*Post, error) {
	name := filepath.Base(path)

	fb, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read post %q: %w", path, err)
	}

	if !utf8.Valid(fb) {
		b.log.Warn("post is not valid UTF-8, replacing bad bytes", "file", path)
		fb = bytes.ToValidUTF8(fb, []byte(string(utf8.RuneError)))
	}

	data, body, err := b.meta.Parse(fb)
	if err != nil {
		return nil, fmt.Errorf("could not process front-matter on %q: %w", path, err)
	}

	err = checkRequired(name, data)
	if err != nil {
		return nil, err
	}

	html, err := b.markdown.Render(body)
	if err != nil {
		return nil, fmt.Errorf("could not render markdown in %q: %w", path, err)
	}

	p, err := newPost(b.config, name, data, string(html))
	if err != nil {
		return nil, err
	}

	b.log.Info("processed post", "file", path)

	return p, nil
}

// sortPosts orders posts newest first. Equal dates keep directory order.
func sortPosts(postList []*Post) {
	sort.SliceStable(postList, func(i, j int) bool {
		return postList[i].Date.After(postList[j].Date)
	})
}

func (b *builderImpl) write(xml string) error {
	path := b.config.OutputFile

	if b.mini == nil {
		err := ioutil.WriteFile(path, []byte(xml), os.FileMode(_ReadWrite))
		if err != nil {
			return fmt.Errorf("could not write file %q: %w", path, err)
		}

		return nil
	}

	outF, err := b.mini.Create(path)
	if err != nil {
		return err
	}

	_, err = io.WriteString(outF, xml)
	if err != nil {
		outF.Close()
		return fmt.Errorf("could not write file %q: %w", path, err)
	}

	return outF.Close()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
