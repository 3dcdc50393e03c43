package reddit

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IdeaValidator/internal/ports"
)

const (
	kindComment = "t1"
	kindLink    = "t3"
	kindMore    = "more"

	blockSelector = "p, li, pre, blockquote, h1, h2, h3, h4, h5, h6, br, tr"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type linkData struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Permalink    string  `json:"permalink"`
	Subreddit    string  `json:"subreddit"`
	Score        int     `json:"score"`
	NumComments  int     `json:"num_comments"`
	CreatedUTC   float64 `json:"created_utc"`
}

type commentData struct {
	Body     string `json:"body"`
	BodyHTML string `json:"body_html"`
	Score    int    `json:"score"`
}

func (d linkData) toSubmission() ports.Submission {
	return ports.Submission{
		ID:          d.ID,
		Title:       strings.TrimSpace(d.Title),
		Body:        renderText(d.SelftextHTML, d.Selftext),
		Permalink:   permalinkBase + d.Permalink,
		Subreddit:   d.Subreddit,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedUTC:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
}

// renderText turns Reddit's rendered markdown into plain text, keeping
// paragraph breaks and dropping link syntax and formatting markers. The raw
// markdown is used when no HTML rendering is present.
func renderText(renderedHTML, markdown string) string {
	if strings.TrimSpace(renderedHTML) == "" {
		return strings.TrimSpace(markdown)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	text := doc.Text()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
