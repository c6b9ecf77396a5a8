// Package report renders crawl inventories into their published artifacts:
// the XML sitemap and the JSON change report.
package report

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/siteatlas/siteatlas/internal/inventory"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`
}

// Sitemap renders the inventory as a sitemap.org urlset document. Entries
// are sorted by URL so the same inventory always produces the same bytes.
func Sitemap(inv inventory.Inventory) ([]byte, error) {
	urls := make([]string, 0, len(inv.URLs))
	for u := range inv.URLs {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	set := urlset{
		Xmlns: sitemapNamespace,
		URLs:  make([]urlEntry, 0, len(urls)),
	}
	for _, u := range urls {
		rec := inv.URLs[u]
		set.URLs = append(set.URLs, urlEntry{
			Loc:      rec.URL,
			LastMod:  rec.LastModified.Format("2006-01-02"),
			Priority: fmt.Sprintf("%.2f", rec.Priority),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(body)
	b.WriteString("\n")
	return []byte(b.String()), nil
}
