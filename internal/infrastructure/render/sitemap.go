package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/pricefeed/internal/domain/entity"
	"golang.org/x/net/idna"
)

// Output fayl nomlari
const (
	FeedFile           = "price_feed.yml"
	StaticSitemapFile  = "sitemap-static.xml"
	ProductSitemapFile = "sitemap-products.xml"
	RobotsFile         = "robots.txt"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// ASCIIURL host qismini punycode ga o'tkazish (краммерти.рф -> xn--...)
func ASCIIURL(raw string) string {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}

	host, err := idna.ToASCII(u.Hostname())
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	return u.String()
}

// StaticURLs statik sahifalar havolalari
func StaticURLs(shopURL string, staticPaths []string) []string {
	base := ASCIIURL(shopURL)
	urls := make([]string, 0, len(staticPaths))
	for _, p := range staticPaths {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		urls = append(urls, base+p)
	}
	return urls
}

// ProductURLs mahsulot sahifalari havolalari, takrorlarsiz
func ProductURLs(catalog *entity.Catalog, shopURL string) []string {
	base := ASCIIURL(shopURL)
	seen := make(map[string]struct{}, len(catalog.Offers))
	urls := make([]string, 0, len(catalog.Offers))
	for _, offer := range catalog.Offers {
		if _, ok := seen[offer.ID]; ok {
			continue
		}
		seen[offer.ID] = struct{}{}
		urls = append(urls, ProductURL(base, offer.ID))
	}
	return urls
}

// RenderSitemap havolalar ro'yxatidan sitemap yaratish
func RenderSitemap(urls []string) ([]byte, error) {
	set := urlSet{Xmlns: sitemapNamespace}
	for _, loc := range urls {
		set.URLs = append(set.URLs, sitemapURL{Loc: loc})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RenderRobots robots.txt: hammasiga ruxsat va ikkala sitemap
func RenderRobots(shopURL string) []byte {
	base := ASCIIURL(shopURL)
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	sb.WriteString("Allow: /\n\n")
	sb.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", base, StaticSitemapFile))
	sb.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", base, ProductSitemapFile))
	return []byte(sb.String())
}

// BuildPublication feed, sahifalar, sitemap va robots fayllarini yig'ish
func BuildPublication(catalog *entity.Catalog, shop ShopInfo, staticPaths []string, now time.Time) (*entity.Publication, error) {
	feed, err := RenderFeed(catalog, shop, now)
	if err != nil {
		return nil, err
	}

	pages, err := RenderPages(catalog, shop)
	if err != nil {
		return nil, err
	}

	staticURLs := StaticURLs(shop.URL, staticPaths)
	productURLs := ProductURLs(catalog, shop.URL)

	staticSitemap, err := RenderSitemap(staticURLs)
	if err != nil {
		return nil, err
	}
	productSitemap, err := RenderSitemap(productURLs)
	if err != nil {
		return nil, err
	}

	artifacts := make([]entity.Artifact, 0, len(pages)+4)
	artifacts = append(artifacts, entity.Artifact{Path: FeedFile, Body: feed})
	artifacts = append(artifacts, pages...)
	artifacts = append(artifacts,
		entity.Artifact{Path: StaticSitemapFile, Body: staticSitemap},
		entity.Artifact{Path: ProductSitemapFile, Body: productSitemap},
		entity.Artifact{Path: RobotsFile, Body: RenderRobots(shop.URL)},
	)

	urls := make([]string, 0, len(productURLs)+len(staticURLs))
	urls = append(urls, productURLs...)
	urls = append(urls, staticURLs...)

	return &entity.Publication{Artifacts: artifacts, URLs: urls}, nil
}
