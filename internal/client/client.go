// Package client submits questionnaires to the intake service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

const DefaultBaseURL = "http://localhost:3001"

// Result is the server's answer to an accepted submission.
type Result struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	ApplicationID string              `json:"applicationId"`
	Data          *models.Application `json:"data,omitempty"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Message string
	Details map[string]any
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Submit posts a snapshot as multipart/form-data. Skills become repeated
// values and the photo, if any, a file part.
func (c *Client) Submit(ctx context.Context, snap form.Snapshot) (*Result, error) {
	body, contentType, err := encode(snap)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/application", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		var body struct {
			Error   string         `json:"error"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		}
		if json.Unmarshal(data, &body) == nil {
			se.Message = body.Error
			if se.Message == "" {
				se.Message = body.Message
			}
			se.Details = body.Details
		}
		return nil, se
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}

func encode(snap form.Snapshot) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(snap.Values))
	for k := range snap.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var values []string
		switch v := snap.Values[k].(type) {
		case nil:
		case string:
			values = []string{v}
		case int:
			values = []string{strconv.Itoa(v)}
		case float64:
			values = []string{strconv.FormatFloat(v, 'f', -1, 64)}
		case []string:
			values = v
		default:
			return nil, "", fmt.Errorf("field %s: unsupported value %T", k, v)
		}
		for _, s := range values {
			if err := mw.WriteField(k, s); err != nil {
				return nil, "", err
			}
		}
	}

	if p := snap.Photo; p != nil {
		if err := writePhoto(mw, p); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writePhoto(mw *multipart.Writer, p *form.Photo) error {
	info, err := os.Stat(p.Path)
	if err != nil {
		return fmt.Errorf("photo: %w", err)
	}
	name := filepath.Base(p.Path)
	if err := models.CheckPhoto(name, p.ContentType, info.Size()); err != nil {
		return err
	}
	f, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("photo: %w", err)
	}
	defer f.Close()

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, models.PhotoField, name))
	h.Set("Content-Type", p.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
