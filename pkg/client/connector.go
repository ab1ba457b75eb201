package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxConnectorPages = 50

// ConnectorClient lists rows of a remote tabular connector (a SharePoint-style list
// exposed as /tables/{table}/items with OData paging).
type ConnectorClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewConnectorClient(baseURL, token string, timeout time.Duration) *ConnectorClient {
	return &ConnectorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type connectorPage struct {
	Value    []map[string]any `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

// ListItems returns every row of the table, restricted to the selected columns when
// fields is non-empty. Numbers are kept as json.Number.
func (c *ConnectorClient) ListItems(ctx context.Context, table string, fields []string) ([]map[string]any, error) {
	q := url.Values{}
	if len(fields) > 0 {
		q.Set("$select", strings.Join(fields, ","))
	}
	next := fmt.Sprintf("%s/tables/%s/items", c.baseURL, url.PathEscape(table))
	if len(q) > 0 {
		next += "?" + q.Encode()
	}

	var items []map[string]any
	for page := 0; next != ""; page++ {
		if page == maxConnectorPages {
			return nil, fmt.Errorf("connector table %s exceeded %d pages", table, maxConnectorPages)
		}

		p, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Value...)

		next = ""
		if p.NextLink != "" {
			if next, err = c.resolveNextLink(p.NextLink); err != nil {
				return nil, err
			}
		}
	}

	return items, nil
}

// resolveNextLink keeps paging on the connector's own scheme and host; the bearer token
// must never reach another origin.
func (c *ConnectorClient) resolveNextLink(link string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid connector base URL: %w", err)
	}
	next, err := base.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid connector next link: %w", err)
	}
	if !strings.EqualFold(next.Scheme, base.Scheme) || !strings.EqualFold(next.Host, base.Host) {
		return "", fmt.Errorf("connector next link points to %s://%s, expected %s://%s",
			next.Scheme, next.Host, base.Scheme, base.Host)
	}
	return next.String(), nil
}

func (c *ConnectorClient) fetchPage(ctx context.Context, pageURL string) (*connectorPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connector request failed: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read connector response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("connector returned status %d: %s", resp.StatusCode, truncate(buf.String(), 200))
	}

	var page connectorPage
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode connector response: %w", err)
	}
	return &page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
