package builder

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/flosch/pongo2/v4"
)

// rssDateLayout is RFC 1123 with the literal zone used by feed readers.
const rssDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

const rssT = `{% autoescape off %}<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:slash="http://purl.org/rss/1.0/modules/slash/">
  <channel>
    <title>{{ title|xmlescape }}</title>
    <link>{{ url }}</link>
    <description>{{ description|xmlescape }}</description>
    <lastBuildDate>{{ date|rssdate }}</lastBuildDate>
    <generator>{{ generator|xmlescape }}</generator>{% for post in posts %}
    <item>
      <title>{{ post.Title|xmlescape }}</title>
      <link>{{ post.Link }}</link>
      <guid>{{ post.GUID }}</guid>
      <pubDate>{{ post.Date|rssdate }}</pubDate>
      <dc:creator>{{ post.Author|xmlescape }}</dc:creator>
      <comments>{{ post.CommentsLink }}</comments>
      <slash:comments>{{ post.CommentCount }}</slash:comments>
      <description><![CDATA[{{ post.HTML|plaintext|cdata }}]]></description>
      <content:encoded><![CDATA[{{ post.HTML|cdata }}]]></content:encoded>
    </item>{% endfor %}
  </channel>
</rss>
{% endautoescape %}`

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	xmlReplacer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

func init() {
	for name, fn := range map[string]pongo2.FilterFunction{
		"xmlescape": filterXMLEscape,
		"plaintext": filterPlainText,
		"cdata":     filterCDATA,
		"rssdate":   filterRSSDate,
	} {
		err := pongo2.RegisterFilter(name, fn)
		if err != nil {
			panic(fmt.Sprintf("could not register filter %q: %v", name, err))
		}
	}
}

// EscapeXML escapes the five XML special characters in a single pass, so
// replacement entities are never escaped again.
func EscapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

// StripHTML drops anything that looks like a tag, collapses whitespace runs
// into one space and trims the result. Unbalanced markup may leak through.
func StripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// escapeCDATA splits any "]]>" so the payload cannot end its CDATA section.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

func filterXMLEscape(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(EscapeXML(in.String())), nil
}

func filterPlainText(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(StripHTML(in.String())), nil
}

func filterCDATA(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(escapeCDATA(in.String())), nil
}

func filterRSSDate(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := in.Interface().(time.Time)
	if !ok {
		return nil, &pongo2.Error{
			Sender:    "filter:rssdate",
			OrigError: fmt.Errorf("%w: %T is not a time", ErrInvalidDate, in.Interface()),
		}
	}

	return pongo2.AsValue(t.UTC().Format(rssDateLayout)), nil
}

// channel is the static metadata of the feed.
type channel struct {
	Title       string
	Description string
	URL         string
	Generator   string
}

type renderer struct {
	tpl *pongo2.Template
}

func newRenderer() (*renderer, error) {
	tpl, err := pongo2.FromString(rssT)
	if err != nil {
		return nil, fmt.Errorf("could not compile rss template: %w", err)
	}

	return &renderer{tpl: tpl}, nil
}

// render returns the RSS 2.0 document for posts, which must already be
// sorted. now becomes the lastBuildDate.
func (r *renderer) render(ch channel, posts []*Post, now time.Time) (string, error) {
	out, err := r.tpl.Execute(pongo2.Context{
		"title":       ch.Title,
		"description": ch.Description,
		"url":         ch.URL,
		"generator":   ch.Generator,
		"date":        now,
		"posts":       posts,
	})
	if err != nil {
		return "", fmt.Errorf("could not render rss: %w", err)
	}

	return out, nil
}
