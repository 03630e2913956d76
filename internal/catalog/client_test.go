package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"mssprep/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const willRecordXML = `<?xml version="1.0" encoding="UTF-8"?>
<marc:records xmlns:marc="http://www.loc.gov/MARC21/slim">
  <marc:record>
    <marc:leader>00000ntm a2200000 a 4500</marc:leader>
    <marc:datafield tag="245" ind1="1" ind2="0">
      <marc:subfield code="a">Antonio Cocchi Donati will,</marc:subfield>
      <marc:subfield code="f">1424.</marc:subfield>
    </marc:datafield>
    <marc:datafield tag="773" ind1="0" ind2=" ">
      <marc:subfield code="t">Italian wills collection</marc:subfield>
      <marc:subfield code="g">Item 124</marc:subfield>
    </marc:datafield>
    <marc:call_number>Ms. Coll. 764</marc:call_number>
  </marc:record>
</marc:records>`

const codexRecordXML = `<?xml version="1.0" encoding="UTF-8"?>
<marc:records xmlns:marc="http://www.loc.gov/MARC21/slim">
  <marc:record>
    <marc:datafield tag="245" ind1="0" ind2="0">
      <marc:subfield code="a">Kitab al-Shifa</marc:subfield>
    </marc:datafield>
    <marc:call_number>CAJS Rar Ms 126</marc:call_number>
  </marc:record>
</marc:records>`

func testConfig() config.Config {
	return config.Config{
		MdprocURLFormat:    "https://mdproc.example.test/records/%s/create?format=marc21",
		MdprocTimeoutMs:    1000,
		MdprocRateLimitRPS: 0,
	}
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFullShelfmarkJoinsCallNumberAndItem(t *testing.T) {
	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/records/9949470363503681/create" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("format") != "marc21" {
				t.Fatalf("unexpected query %s", r.URL.RawQuery)
			}
			return xmlResponse(http.StatusOK, willRecordXML), nil
		}),
	}

	got, err := client.FullShelfmark(context.Background(), "9949470363503681")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Ms. Coll. 764 Item 124" {
		t.Fatalf("got %q", got)
	}
}

func TestFullShelfmarkWithoutItem(t *testing.T) {
	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return xmlResponse(http.StatusOK, codexRecordXML), nil
		}),
	}

	got, err := client.FullShelfmark(context.Background(), "9968529583503681")
	if err != nil {
		t.Fatal(err)
	}
	if got != "CAJS Rar Ms 126" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchErrors(t *testing.T) {
	cases := []struct {
		name    string
		respond func() (*http.Response, error)
		wantErr error
	}{
		{
			name:    "server error",
			respond: func() (*http.Response, error) { return xmlResponse(http.StatusInternalServerError, "boom"), nil },
		},
		{
			name:    "transport error",
			respond: func() (*http.Response, error) { return nil, errors.New("connection refused") },
		},
		{
			name:    "no call number",
			respond: func() (*http.Response, error) { return xmlResponse(http.StatusOK, "<html><body>not found</body></html>"), nil },
			wantErr: ErrNoCallNumber,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempts := 0
			client := NewClient(testConfig())
			client.httpClient = &http.Client{
				Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					attempts++
					return tc.respond()
				}),
			}

			_, err := client.FullShelfmark(context.Background(), "42")
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("want FetchError, got %v", err)
			}
			if fetchErr.BibID != "42" {
				t.Fatalf("bibid=%s", fetchErr.BibID)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if attempts != 1 {
				t.Fatalf("attempts=%d, lookups must not be retried", attempts)
			}
		})
	}
}
