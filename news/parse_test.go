package news

import (
	"testing"
	"time"
	"wolfhub/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchTime = time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Backing The Pack</title>
    <link>https://www.backingthepack.com</link>
    <description>NC State news</description>
    <lastBuildDate>Mon, 04 Nov 2024 18:00:00 +0000</lastBuildDate>
    <item>
      <title>Wolfpack beats Wake</title>
      <link>https://www.backingthepack.com/1</link>
      <guid>https://www.backingthepack.com/1</guid>
      <description><![CDATA[<p>NC State <b>wins</b> &amp; moves on</p><img src="X" alt="hero"/><img src="Y"/>]]></description>
      <pubDate>Mon, 04 Nov 2024 17:00:00 +0000</pubDate>
      <dc:creator>Jane Doe</dc:creator>
      <category>Basketball</category>
      <category>ACC</category>
      <category>Basketball</category>
    </item>
    <item>
      <description>plain text</description>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Pack</title>
  <link href="https://atom.example"/>
  <updated>2024-11-04T18:00:00Z</updated>
  <id>urn:feed</id>
  <entry>
    <id>urn:1</id>
    <title>Atom story</title>
    <link href="https://atom.example/1"/>
    <updated>2024-11-03T10:00:00Z</updated>
    <summary>Summary text</summary>
    <author><name>Sam</name></author>
    <category term="Football"/>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	feed, err := Parse([]byte(rssFixture), "https://btp.test/rss", fetchTime)
	require.NoError(t, err)

	assert.Equal(t, "https://btp.test/rss", feed.Url)
	assert.Equal(t, "Backing The Pack", feed.Title)
	assert.Equal(t, "NC State news", feed.Description)
	assert.Equal(t, time.Date(2024, 11, 4, 18, 0, 0, 0, time.UTC).Unix(), feed.LastBuildDate.Unix())
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Wolfpack beats Wake", first.Title)
	assert.Equal(t, "https://www.backingthepack.com/1", first.Id)
	assert.Equal(t, "https://www.backingthepack.com/1", first.Guid)
	assert.Equal(t, "NC State wins & moves on", first.Description)
	assert.Equal(t, first.Description, first.Content)
	assert.NotContains(t, first.Description, "<")
	assert.Equal(t, "X", first.ImageUrl)
	assert.Equal(t, "Jane Doe", first.Author)
	assert.ElementsMatch(t, []string{"Basketball", "ACC"}, first.Categories)
	assert.Equal(t, time.Date(2024, 11, 4, 17, 0, 0, 0, time.UTC).Unix(), first.PublishedAt.Unix())

	second := feed.Items[1]
	assert.Equal(t, "Untitled", second.Title)
	assert.Equal(t, "Unknown", second.Author)
	assert.Equal(t, "item-1", second.Id)
	assert.Equal(t, "guid-1", second.Guid)
	assert.Equal(t, "plain text", second.Content)
	assert.Equal(t, fetchTime, second.PublishedAt)
	assert.Empty(t, second.Categories)
	assert.Empty(t, second.ImageUrl)
}

func TestParseAtom(t *testing.T) {
	feed, err := Parse([]byte(atomFixture), "https://atom.example/feed", fetchTime)
	require.NoError(t, err)

	assert.Equal(t, "Atom Pack", feed.Title)
	require.Len(t, feed.Items, 1)

	item := feed.Items[0]
	assert.Equal(t, "urn:1", item.Guid)
	assert.Equal(t, "Atom story", item.Title)
	assert.Equal(t, "https://atom.example/1", item.Link)
	assert.Equal(t, "Summary text", item.Description)
	assert.Equal(t, "Sam", item.Author)
	assert.Equal(t, []string{"Football"}, item.Categories)
	assert.Equal(t, time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC).Unix(), item.PublishedAt.Unix())
}

func TestParseRejectsMalformedFeeds(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"html page", `<html><body><p>Not a feed</p></body></html>`},
		{"rss without channel", `<rss version="2.0"><item><title>x</title></item></rss>`},
		{"plain text", `service unavailable`},
		{"json", `{"items": []}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := Parse([]byte(tt.doc), "https://btp.test/rss", fetchTime)
			assert.Nil(t, feed)
			require.Error(t, err)
			assert.True(t, upstream.IsParseError(err))
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantText  string
		wantImage string
	}{
		{"plain", "  hello  ", "hello", ""},
		{"tags", "<p>Go <em>Pack</em></p>", "Go Pack", ""},
		{"entities", "Wolf &amp; Pack &lt;3", "Wolf & Pack <3", ""},
		{"first image", `<img src="a.jpg"><img src="b.jpg">`, "", "a.jpg"},
		{"image without src", `<img alt="x"><img src="b.jpg">`, "", "b.jpg"},
		{"script dropped", `<script>alert(1)</script>text`, "text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, image := stripHTML(tt.in)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantImage, image)
		})
	}
}
