package base

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Options struct {
	Client *http.Client
	// BrowserFallback enables the chromedp and Selenium strategies after a failed HTTP fetch.
	BrowserFallback  bool
	ChromeDriverPath string
	Logger           *logger.Logger
}

// BaseScraper handles common scraping logic
type BaseScraper struct {
	Client           *http.Client
	BrowserFallback  bool
	ChromeDriverPath string
	log              *logger.Logger
}

// NewBaseScraper creates a new BaseScraper instance
func NewBaseScraper(opts Options) *BaseScraper {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	driverPath := opts.ChromeDriverPath
	if driverPath == "" {
		driverPath = "/usr/local/bin/chromedriver"
	}
	return &BaseScraper{
		Client:           client,
		BrowserFallback:  opts.BrowserFallback,
		ChromeDriverPath: driverPath,
		log:              logger.OrNop(opts.Logger).With("service", "BaseScraper"),
	}
}

// StatusError is returned when the page answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Scrape failed with status %d", e.StatusCode)
}

// FetchDocument fetches the URL using multiple strategies with a custom validator.
// Every failure is reported as an UpstreamFetch error.
func (b *BaseScraper) FetchDocument(ctx context.Context, url string, validator func(*goquery.Document) bool) (*goquery.Document, error) {
	// Strategy 1: HTTP Client (Fastest)
	doc, httpErr := b.FetchDocumentHTTP(ctx, url)
	if httpErr == nil {
		if validator(doc) {
			b.log.Debug("http fetch succeeded", "url", url)
			return doc, nil
		}
		b.log.Info("http fetch yielded invalid content", "url", url)
	} else {
		b.log.Warn("http fetch failed", "url", url, "error", httpErr)
	}

	if !b.BrowserFallback {
		if httpErr != nil {
			return nil, apperr.UpstreamFetch(httpErr.Error(), httpErr)
		}
		return doc, nil
	}

	// Strategy 2: ChromeDP (Headless)
	doc, err := b.FetchDocumentChromeDP(ctx, url)
	if err == nil && validator(doc) {
		b.log.Info("chromedp fetch succeeded", "url", url)
		return doc, nil
	}
	if err != nil {
		b.log.Warn("chromedp fetch failed", "url", url, "error", err)
	}

	// Strategy 3: Selenium (Full Browser)
	doc, err = b.FetchDocumentSelenium(ctx, url)
	if err == nil && validator(doc) {
		b.log.Info("selenium fetch succeeded", "url", url)
		return doc, nil
	}
	if err != nil {
		b.log.Warn("selenium fetch failed", "url", url, "error", err)
	}

	cause := httpErr
	if cause == nil {
		cause = fmt.Errorf("all strategies failed for %s", url)
	}
	return nil, apperr.UpstreamFetch(cause.Error(), cause)
}

// IsValidDocument rejects bot walls and near-empty pages.
func IsValidDocument(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	if strings.Contains(title, "robot check") ||
		strings.Contains(title, "captcha") ||
		strings.Contains(title, "access denied") {
		return false
	}
	return len(strings.TrimSpace(doc.Find("body").Text())) > 200
}

// FetchDocumentHTTP fetches the URL and returns a GoQuery document via standard HTTP
func (b *BaseScraper) FetchDocumentHTTP(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	res, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	return goquery.NewDocumentFromReader(res.Body)
}
