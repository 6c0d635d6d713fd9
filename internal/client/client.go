// Package client talks to the masjid admin API over HTTP. It is what
// masjidctl uses to read and write prayer times on a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Client is a bearer-token client for one API base URL.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response. It unwraps to the domain sentinel that
// matches its code, so callers can use errors.Is(err, domain.ErrNotFound).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "not_found":
		return domain.ErrNotFound
	case "validation_error":
		return domain.ErrValidation
	case "parse_error":
		return domain.ErrParse
	case "forbidden":
		return domain.ErrForbidden
	case "invalid_step":
		return domain.ErrStep
	case "conflict":
		return domain.ErrConflict
	}
	return nil
}

// record is the wire form of a stored prayer time.
type record struct {
	ID           uuid.UUID `json:"id"`
	MasjidID     uuid.UUID `json:"masjid_id"`
	Date         string    `json:"date"`
	HijriDate    string    `json:"hijri_date"`
	Active       bool      `json:"active"`
	FajrStart    string    `json:"fajr_start"`
	FajrJammat   string    `json:"fajr_jammat"`
	Sunrise      string    `json:"sunrise"`
	DhurStart    string    `json:"dhur_start"`
	DhurJammat   string    `json:"dhur_jammat"`
	AsrStart     string    `json:"asr_start"`
	AsrStart1    *string   `json:"asr_start_1"`
	AsrJammat    string    `json:"asr_jammat"`
	MagribStart  string    `json:"magrib_start"`
	MagribJammat string    `json:"magrib_jammat"`
	IshaStart    string    `json:"isha_start"`
	IshaJammat   string    `json:"isha_jammat"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r record) toDomain() domain.PrayerTime {
	return domain.PrayerTime{
		ID: r.ID, MasjidID: r.MasjidID,
		Date: r.Date, HijriDate: r.HijriDate, Active: r.Active,
		FajrStart: r.FajrStart, FajrJammat: r.FajrJammat,
		Sunrise:   r.Sunrise,
		DhurStart: r.DhurStart, DhurJammat: r.DhurJammat,
		AsrStart: r.AsrStart, AsrStart1: r.AsrStart1, AsrJammat: r.AsrJammat,
		MagribStart: r.MagribStart, MagribJammat: r.MagribJammat,
		IshaStart: r.IshaStart, IshaJammat: r.IshaJammat,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// List fetches a masjid's records between start and end inclusive. Either
// bound may be empty.
func (c *Client) List(ctx context.Context, masjidID uuid.UUID, start, end string) ([]domain.PrayerTime, error) {
	q := url.Values{}
	if start != "" {
		q.Set("date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}
	q.Set("limit", strconv.Itoa(domain.MaxQueryLimit))

	var body struct {
		Data []record `json:"data"`
	}
	path := fmt.Sprintf("/masjids/%s/prayer-times?%s", masjidID, q.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, fmt.Errorf("client.Client.List: %w", err)
	}

	out := make([]domain.PrayerTime, len(body.Data))
	for i, r := range body.Data {
		out[i] = r.toDomain()
	}
	return out, nil
}

// BatchCreate writes rows in one request.
func (c *Client) BatchCreate(ctx context.Context, masjidID uuid.UUID, rows []domain.PrayerTimeInput) (domain.BatchResult, error) {
	var res domain.BatchResult
	path := fmt.Sprintf("/masjids/%s/prayer-times/batch", masjidID)
	if err := c.do(ctx, http.MethodPost, path, rows, &res); err != nil {
		return domain.BatchResult{}, fmt.Errorf("client.Client.BatchCreate: %w", err)
	}
	return res, nil
}

// Update applies a partial update to one record.
func (c *Client) Update(ctx context.Context, masjidID, id uuid.UUID, patch domain.PrayerTimePatch) (domain.PrayerTime, error) {
	var r record
	path := fmt.Sprintf("/masjids/%s/prayer-times/%s", masjidID, id)
	if err := c.do(ctx, http.MethodPatch, path, patch, &r); err != nil {
		return domain.PrayerTime{}, fmt.Errorf("client.Client.Update: %w", err)
	}
	return r.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Code == "" {
		apiErr.Code = "http_error"
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	apiErr.Code = body.Error.Code
	apiErr.Message = body.Error.Message
	return apiErr
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
