package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"StockAnalyser/internal/model"

	"golang.org/x/net/html"
)

const (
	// DefaultNameURL is the stooq quote page; %s is replaced with the ticker.
	DefaultNameURL = DefaultStooqURL + "/q/?s=%s"
	// DefaultNameElementID is the id of the element holding the instrument name.
	DefaultNameElementID = "aq_name"
)

// HTMLNameResolver scrapes the display name from the text of an element
// selected by id on a quote page.
type HTMLNameResolver struct {
	URLTemplate string
	ElementID   string
	Client      *http.Client
}

// NewHTMLNameResolver creates a resolver; empty arguments fall back to the stooq defaults.
func NewHTMLNameResolver(urlTemplate, elementID, proxyURL string) *HTMLNameResolver {
	if urlTemplate == "" {
		urlTemplate = DefaultNameURL
	}
	if elementID == "" {
		elementID = DefaultNameElementID
	}
	return &HTMLNameResolver{
		URLTemplate: urlTemplate,
		ElementID:   elementID,
		Client:      NewHTTPClient(proxyURL),
	}
}

func (r *HTMLNameResolver) ResolveName(ctx context.Context, ticker string) (string, error) {
	u := fmt.Sprintf(r.URLTemplate, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("name lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("name lookup %s: %w", ticker, model.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("name lookup: status %d, body: %s", resp.StatusCode, string(body))
	}

	name, err := ExtractElementText(resp.Body, r.ElementID)
	if err != nil {
		return "", fmt.Errorf("name lookup %s: %w", ticker, err)
	}
	return name, nil
}

// ExtractElementText returns the whitespace-collapsed text of the element with the given id.
// A missing element is model.ErrFormatChanged, an empty one model.ErrNotFound.
func ExtractElementText(r io.Reader, id string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	node := findByID(doc, id)
	if node == nil {
		return "", fmt.Errorf("element #%s: %w", id, model.ErrFormatChanged)
	}
	var b strings.Builder
	collectText(node, &b)
	text := strings.Join(strings.Fields(b.String()), " ")
	if text == "" {
		return "", fmt.Errorf("element #%s is empty: %w", id, model.ErrNotFound)
	}
	return text, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// StaticNameResolver serves names from a fixed table, falling back to the
// upper-cased ticker when Fallback is set.
type StaticNameResolver struct {
	Names    map[string]string
	Fallback bool
}

func (r *StaticNameResolver) ResolveName(_ context.Context, ticker string) (string, error) {
	if name, ok := r.Names[ticker]; ok {
		return name, nil
	}
	if r.Fallback {
		return strings.ToUpper(ticker), nil
	}
	return "", fmt.Errorf("name lookup %s: %w", ticker, model.ErrNotFound)
}
