package legacy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

// Client fetches logbook data from the legacy portal backend. Failures are
// surfaced as upstream errors; the caller re-issues the action, there is no
// automatic retry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a legacy client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchLogbook retrieves the legacy logbook metadata for a student.
func (c *Client) FetchLogbook(ctx context.Context, studentID string) (*Logbook, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/logbooks/%s", url.PathEscape(studentID)))
	if err != nil {
		return nil, err
	}
	book, err := DecodeLogbook(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed legacy logbook response")
	}
	return book, nil
}

// FetchWeek retrieves one week of legacy entries for a student.
func (c *Client) FetchWeek(ctx context.Context, studentID string, week int) ([]Entry, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/logbooks/%s/weeks/%d/entries", url.PathEscape(studentID), week))
	if err != nil {
		return nil, err
	}
	entries, err := DecodeEntryList(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed legacy entries response")
	}
	return entries, nil
}

// ListAssessorLogbooks retrieves the logbooks assigned to an assessor.
func (c *Client) ListAssessorLogbooks(ctx context.Context, assessorID string) ([]Logbook, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/assessors/%s/logbooks", url.PathEscape(assessorID)))
	if err != nil {
		return nil, err
	}
	payload, err := unwrap(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed legacy logbook list response")
	}
	var books []Logbook
	if err := decodeArray(payload, &books); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed legacy logbook list response")
	}
	return books, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "build legacy request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "legacy backend unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read legacy response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("legacy backend answered %d for %s", resp.StatusCode, path))
	}
	return body, nil
}
