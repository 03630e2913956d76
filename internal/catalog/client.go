package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mssprep/internal/config"
)

// Selectors for the mdproc MARC XML rendering. The html parser keeps the
// namespace prefix as part of the element name, so the colon is escaped.
const (
	selCallNumber = `marc\:call_number`
	selPartItem   = `marc\:datafield[tag="773"] marc\:subfield[code="g"]`
)

var ErrNoCallNumber = errors.New("record has no call number element")

// FetchError reports a failed metadata lookup for one bibid.
type FetchError struct {
	BibID string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch record bibid=%s: %v", e.BibID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MarcRecord holds the fields read from a bibliographic record.
type MarcRecord struct {
	CallNumber string
	PartItem   string
}

// FullShelfmark joins the call number and part/item designator.
func (r MarcRecord) FullShelfmark() string {
	return strings.TrimSpace(r.CallNumber + " " + r.PartItem)
}

type Client struct {
	urlFormat  string
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		urlFormat:  cfg.MdprocURLFormat,
		httpClient: &http.Client{Timeout: time.Duration(cfg.MdprocTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.MdprocRateLimitRPS),
	}
}

// FullShelfmark looks up bibid and returns its call number plus part/item.
// Errors are *FetchError.
func (c *Client) FullShelfmark(ctx context.Context, bibid string) (string, error) {
	rec, err := c.GetRecord(ctx, bibid)
	if err != nil {
		return "", err
	}
	return rec.FullShelfmark(), nil
}

func (c *Client) GetRecord(ctx context.Context, bibid string) (MarcRecord, error) {
	body, err := c.fetch(ctx, bibid)
	if err != nil {
		return MarcRecord{}, &FetchError{BibID: bibid, Err: err}
	}
	rec, err := parseMarcXML(body)
	if err != nil {
		return MarcRecord{}, &FetchError{BibID: bibid, Err: err}
	}
	return rec, nil
}

func (c *Client) fetch(ctx context.Context, bibid string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf(c.urlFormat, url.PathEscape(bibid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mdproc status=%d body=%s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func parseMarcXML(body []byte) (MarcRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return MarcRecord{}, fmt.Errorf("parse marc xml: %w", err)
	}

	callNumber := doc.Find(selCallNumber)
	if callNumber.Length() == 0 {
		return MarcRecord{}, ErrNoCallNumber
	}

	return MarcRecord{
		CallNumber: callNumber.Text(),
		PartItem:   doc.Find(selPartItem).Text(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
