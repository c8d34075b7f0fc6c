package builder

import (
	"encoding/xml"
	"html"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 1, 12, 30, 0, 0, time.UTC)

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		In   string
		Want string
	}{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<tag>", "&lt;tag&gt;"},
		{`"q"`, "&quot;q&quot;"},
		{"it's", "it&apos;s"},
		{"&amp;", "&amp;amp;"},
		{"", ""},
	}

	for _, tcase := range tests {
		t.Run(tcase.In, func(t *testing.T) {
			assert.Equal(t, tcase.Want, EscapeXML(tcase.In))
		})
	}
}

func TestEscapeXMLRoundTrip(t *testing.T) {
	for _, s := range []string{
		"Archives du Dormeur - News",
		"Actualités du launcher",
		`<b>Bold & "quoted"</b> it's`,
		"&&&;;<<>>''\"\"",
		"&lt; already escaped",
		"",
	} {
		assert.Equal(t, s, html.UnescapeString(EscapeXML(s)))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		Name string
		In   string
		Want string
	}{
		{"tags", `<b>Bold & "quoted"</b>`, `Bold & "quoted"`},
		{"paragraphs", "<p>one</p>\n<p>two   three</p>\n", "one two three"},
		{"attributes", `<a href="https://x.org">link</a>`, "link"},
		{"no tags", "  just\ttext \n", "just text"},
		{"unbalanced", "a < b and c", "a < b and c"},
		{"empty", "", ""},
	}

	for _, tcase := range tests {
		t.Run(tcase.Name, func(t *testing.T) {
			assert.Equal(t, tcase.Want, StripHTML(tcase.In))
		})
	}
}

func TestRender(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	posts := []*Post{
		{
			Title:        `Tom & Jerry's <new> "show"`,
			Author:       "Jane & co",
			Date:         time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			Link:         "https://example.com/news/update?a=1&b=2",
			GUID:         "update-guid",
			CommentsLink: "https://example.com/news/update#comments",
			CommentCount: 4,
			HTML:         `<b>Bold & "quoted"</b>`,
		},
	}

	out, err := r.render(channel{
		Title:       "News & Notes",
		Description: "All the <news>",
		URL:         "https://example.com/news",
		Generator:   "newsrss",
	}, posts, testNow)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns:content="http://purl.org/rss/1.0/modules/content/"`)
	assert.Contains(t, out, `xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	assert.Contains(t, out, `xmlns:slash="http://purl.org/rss/1.0/modules/slash/"`)

	assert.Contains(t, out, "<title>News &amp; Notes</title>")
	assert.Contains(t, out, "<description>All the &lt;news&gt;</description>")
	assert.Contains(t, out, "<lastBuildDate>Sat, 01 Jun 2024 12:30:00 GMT</lastBuildDate>")
	assert.Contains(t, out, "<generator>newsrss</generator>")

	assert.Contains(t, out, "<title>Tom &amp; Jerry&apos;s &lt;new&gt; &quot;show&quot;</title>")
	// URLs are written as-is.
	assert.Contains(t, out, "<link>https://example.com/news/update?a=1&b=2</link>")
	assert.Contains(t, out, "<guid>update-guid</guid>")
	assert.Contains(t, out, "<pubDate>Tue, 05 Mar 2024 00:00:00 GMT</pubDate>")
	assert.Contains(t, out, "<dc:creator>Jane &amp; co</dc:creator>")
	assert.Contains(t, out, "<comments>https://example.com/news/update#comments</comments>")
	assert.Contains(t, out, "<slash:comments>4</slash:comments>")
	assert.Contains(t, out, `<description><![CDATA[Bold & "quoted"]]></description>`)
	assert.Contains(t, out, `<content:encoded><![CDATA[<b>Bold & "quoted"</b>]]></content:encoded>`)
}

func TestRenderItemFieldOrder(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	out, err := r.render(channel{Title: "t", URL: "https://example.com", Generator: "g"}, []*Post{{
		Title: "a", Author: "b", Date: testNow, Link: "l", GUID: "g", CommentsLink: "c", HTML: "<p>h</p>",
	}}, testNow)
	require.NoError(t, err)

	item := out[strings.Index(out, "<item>"):]
	last := -1

	for _, tag := range []string{
		"<title>", "<link>", "<guid>", "<pubDate>", "<dc:creator>",
		"<comments>", "<slash:comments>", "<description>", "<content:encoded>",
	} {
		idx := strings.Index(item, tag)
		require.NotEqual(t, -1, idx, tag)
		assert.Greater(t, idx, last, tag)
		last = idx
	}
}

func TestRenderCDATATerminator(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	body := "<pre>a]]>b</pre>"

	out, err := r.render(channel{Title: "t", URL: "https://example.com", Generator: "g"}, []*Post{{
		Title: "x", Author: "y", Date: testNow, Link: "https://example.com/x", GUID: "x", CommentsLink: "c", HTML: body,
	}}, testNow)
	require.NoError(t, err)

	var doc struct {
		Items []struct {
			Content string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
		} `xml:"channel>item"`
	}

	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Items, 1)
	assert.Equal(t, body, doc.Items[0].Content)
}

func TestRenderEmpty(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	out, err := r.render(channel{Title: "t", URL: "https://example.com", Generator: "g"}, nil, testNow)
	require.NoError(t, err)

	assert.NotContains(t, out, "<item>")

	feed, err := gofeed.NewParser().ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, "t", feed.Title)
	assert.Empty(t, feed.Items)
}

func TestRenderDeterministic(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	posts := []*Post{
		{Title: "a", Author: "x", Date: testNow, Link: "l1", GUID: "l1", CommentsLink: "l1#comments", HTML: "<p>1</p>"},
		{Title: "b", Author: "x", Date: testNow.Add(-time.Hour), Link: "l2", GUID: "l2", CommentsLink: "l2#comments", HTML: "<p>2</p>"},
	}
	ch := channel{Title: "t", URL: "https://example.com", Generator: "g"}

	first, err := r.render(ch, posts, testNow)
	require.NoError(t, err)

	second, err := r.render(ch, posts, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
