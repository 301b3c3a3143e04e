// internal/interfaces/http/handlers/seo.go
package handlers

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// SitemapSource lists the records that get public URLs
type SitemapSource interface {
	SitemapEntries(ctx context.Context) *catalog.Sitemap
}

// SEOHandler serves sitemap.xml and robots.txt
type SEOHandler struct {
	source  SitemapSource
	baseURL string
	now     func() time.Time
}

// NewSEOHandler creates a new SEO handler. baseURL is the public site root.
func NewSEOHandler(source SitemapSource, baseURL string) *SEOHandler {
	return &SEOHandler{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// Sitemap handles GET /sitemap.xml
func (h *SEOHandler) Sitemap(c *gin.Context) {
	entries := h.source.SitemapEntries(c.Request.Context())
	today := h.now().UTC().Format("2006-01-02")

	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.baseURL + "/", LastMod: today, ChangeFreq: "daily", Priority: 1.0},
			{Loc: h.baseURL + "/shop", LastMod: today, ChangeFreq: "monthly"},
			{Loc: h.baseURL + "/offers", LastMod: today, ChangeFreq: "yearly"},
		},
	}

	for _, p := range entries.Products {
		if p.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/products/" + url.PathEscape(p.Slug),
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "monthly",
		})
	}
	for _, cat := range entries.Categories {
		if cat.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/shop?type=" + url.QueryEscape(cat.Slug),
			LastMod:    lastMod(cat.UpdatedAt),
			ChangeFreq: "monthly",
		})
	}
	for _, o := range entries.Offers {
		if o.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/offers/" + url.PathEscape(o.Slug),
			LastMod:    lastMod(o.UpdatedAt),
			ChangeFreq: "monthly",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build sitemap",
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}

// lastMod keeps the date part of an RFC 3339 timestamp
func lastMod(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

var disallowAll = []string{"/api/", "/checkout/", "/order/", "/_next/", "/admin/"}

var disallowGooglebot = []string{"/api/", "/checkout/", "/order/", "/admin/"}

// Robots handles GET /robots.txt
func (h *SEOHandler) Robots(c *gin.Context) {
	var b strings.Builder
	writeRules := func(agent string, disallow []string) {
		b.WriteString("User-Agent: " + agent + "\n")
		b.WriteString("Allow: /\n")
		for _, path := range disallow {
			b.WriteString("Disallow: " + path + "\n")
		}
		b.WriteString("\n")
	}

	writeRules("*", disallowAll)
	writeRules("Googlebot", disallowGooglebot)
	b.WriteString("Sitemap: " + h.baseURL + "/sitemap.xml\n")

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}
