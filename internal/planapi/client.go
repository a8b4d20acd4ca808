// Package planapi talks to the university plan service. It owns all network
// retrieval; everything it returns is raw, loosely-typed upstream data that
// the schedule engine normalizes.
package planapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "github.com/Kejlo523/mzut-v2-pwa-sub000/internal/log"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// Client fetches schedule data from the plan service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a plan service client for the given base URL, e.g.
// "https://plan.zut.edu.pl".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchSchedule retrieves raw class occurrences for the given identity and
// date window. Exactly one of album / search should be set; album queries by
// student number, search by teacher or room text.
//
// The service responds with a JSON array whose first element is often an
// empty metadata object; such rows carry no time bounds and are dropped
// during normalization, so no special casing is needed here.
func (c *Client) FetchSchedule(ctx context.Context, album, search string, start, end time.Time) ([]model.RawOccurrence, error) {
	if album == "" && search == "" {
		return nil, errors.New("planapi: no album number and no search filter")
	}

	q := url.Values{}
	if search != "" {
		q.Set("teacher", search)
	} else {
		q.Set("number", album)
	}
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))

	endpoint := c.baseURL + "/schedule_student.php?" + q.Encode()

	var raw []model.RawOccurrence
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("planapi: fetch schedule: %w", err)
	}

	appLog.Info("plan fetch completed",
		"url", redactURL(endpoint),
		"records", len(raw),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)
	return raw, nil
}

// FetchSessionPeriods retrieves the academic calendar markers (exam
// sessions, holidays). These pass through into the schedule unmodified.
func (c *Client) FetchSessionPeriods(ctx context.Context) ([]model.SessionPeriod, error) {
	endpoint := c.baseURL + "/session_periods.php"

	var periods []model.SessionPeriod
	if err := c.getJSON(ctx, endpoint, &periods); err != nil {
		return nil, fmt.Errorf("planapi: fetch session periods: %w", err)
	}
	return periods, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactURL hides query strings (album numbers, search text) when logging
// plan service URLs.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "plan://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
