// Package fetcher downloads a web page and reduces it to a title and
// readable text, ready to be stored as a note.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	userAgent = "kbc/1.0 (note clipper)"

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	maxBody = 5 * 1024 * 1024
	maxText = 64 * 1024
)

// ErrNoText is returned when a page has nothing readable in it
var ErrNoText = errors.New("no text content found")

// Page is the readable part of a fetched document
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher retrieves pages over HTTP
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose requests give up after timeout
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Normalize validates rawURL, defaulting to https when no scheme is given
func Normalize(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: no host", rawURL)
	}
	return u.String(), nil
}

// Fetch retrieves rawURL and extracts its title and text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %s", target, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	page := &Page{URL: target}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		page.Text = capText(strings.TrimSpace(string(body)))
	} else {
		page.Title, page.Text = extract(string(body))
	}
	if page.Text == "" {
		return nil, fmt.Errorf("%s: %w", target, ErrNoText)
	}
	if page.Title == "" {
		page.Title = target
	}
	return page, nil
}

// non-content elements
var skip = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Nav: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true,
	atom.Noscript: true, atom.Iframe: true, atom.Template: true,
}

var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Section: true, atom.Article: true,
}

// extract parses HTML and returns the document title and its text, one
// block element per line
func extract(doc string) (title, text string) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", ""
	}

	var (
		sb    strings.Builder
		h1    string
		visit func(*html.Node)
	)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skip[n.DataAtom] {
				return
			}
			switch n.DataAtom {
			case atom.Title:
				if title == "" {
					title = collapse(textOf(n))
				}
				return
			case atom.H1:
				if h1 == "" {
					h1 = collapse(textOf(n))
				}
			}
		}

		if n.Type == html.TextNode {
			if t := collapse(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}

		if n.Type == html.ElementNode && block[n.DataAtom] {
			sb.WriteString("\n")
		}
	}
	visit(root)

	if title == "" {
		title = h1
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	return title, capText(strings.Join(lines, "\n"))
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capText(s string) string {
	if len(s) <= maxText {
		return s
	}
	cut := maxText
	// back up to a rune boundary
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}
