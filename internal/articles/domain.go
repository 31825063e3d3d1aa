// Package articles proxies the latest news posts from the public
// company site so clients do not have to scrape it themselves.
package articles

// Article is one news post scraped from the upstream site.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}
