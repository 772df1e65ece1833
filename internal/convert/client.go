// Package convert talks to the image-to-mesh conversion service and
// stages the bundles it returns so the viewport can load them.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PromptField is the multipart field carrying the free-text prompt.
const PromptField = "imagination"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// ServiceError is a non-2xx reply, or an error document, from the service.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("conversion service: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("conversion service: %d %s: %s", e.Status, http.StatusText(e.Status), body)
}

// Client calls the conversion service.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a client for the service at baseURL. log may be nil.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing service URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("service URL %q: scheme must be http or https", baseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}, log: log}, nil
}

// Upload posts an image (field "file") with an optional prompt and returns
// the mesh bundle.
func (c *Client) Upload(ctx context.Context, imagePath, prompt string) ([]byte, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if prompt != "" {
		if err := mw.WriteField(PromptField, prompt); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	c.log.Info("uploading image", zap.String("image", imagePath), zap.Int("bytes", body.Len()))
	return c.post(ctx, "upload", mw.FormDataContentType(), &body)
}

// Generate asks the service to synthesize a mesh from a prompt and style.
func (c *Client) Generate(ctx context.Context, prompt, style string) ([]byte, error) {
	payload, err := json.Marshal(struct {
		Prompt string `json:"prompt"`
		Style  string `json:"style"`
	}{prompt, style})
	if err != nil {
		return nil, err
	}
	c.log.Info("requesting generation", zap.String("style", style))
	return c.post(ctx, "generate", "application/json", bytes.NewReader(payload))
}

// reply is the JSON document some service versions answer with instead
// of the bundle itself.
type reply struct {
	Error        string `json:"error"`
	RenderedFile string `json:"rendered_file"`
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(endpoint), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{Status: resp.StatusCode, Body: errorText(msg)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading reply: %w", req.Method, req.URL.Path, err)
	}
	c.log.Debug("service reply",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if !isJSON(resp.Header.Get("Content-Type")) {
		return data, nil
	}
	r, status, err := decodeReply(data, resp.StatusCode)
	if err != nil {
		return nil, fmt.Errorf("%s %s: decoding reply: %w", req.Method, req.URL.Path, err)
	}
	switch {
	case r.Error != "":
		return nil, &ServiceError{Status: status, Body: r.Error}
	case r.RenderedFile != "":
		return c.fetchRendered(req.Context(), r.RenderedFile)
	}
	return nil, &ServiceError{Status: status, Body: "reply carries neither a bundle nor a rendered file"}
}

// decodeReply reads a reply object. Handlers that return a (body, status)
// pair are served as a 200 carrying [body, status]; the embedded status
// then replaces the transport one.
func decodeReply(data []byte, status int) (reply, int, error) {
	var r reply
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		err := json.Unmarshal(trimmed, &r)
		return r, status, err
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(trimmed, &pair); err != nil {
		return r, status, err
	}
	if len(pair) == 0 || len(pair) > 2 {
		return r, status, fmt.Errorf("unexpected %d-element reply", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r); err != nil {
		return r, status, err
	}
	if len(pair) == 2 {
		var code int
		if json.Unmarshal(pair[1], &code) == nil && code >= 100 && code <= 599 {
			status = code
		}
	}
	return r, status, nil
}

// fetchRendered downloads a bundle the service stored server-side.
func (c *Client) fetchRendered(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("rendered_file", url.PathEscape(name)), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) endpoint(elem ...string) string {
	return c.base.JoinPath(elem...).String()
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// errorText extracts {"error": ...} or {"detail": ...} from an error body,
// falling back to the raw text.
func errorText(body []byte) string {
	var doc struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(body, &doc) == nil {
		if doc.Error != "" {
			return doc.Error
		}
		if s, ok := doc.Detail.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}
