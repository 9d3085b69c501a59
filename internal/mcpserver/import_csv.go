package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const maxCSVSize = 10 << 20 // 10 MB

var csvMIMETypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

func (s *Server) importLeadsCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inline := req.GetString("csv", "")
	rawURL := req.GetString("url", "")

	var data []byte
	var err error
	switch {
	case inline != "" && rawURL != "":
		return mcp.NewToolResultError("pass either csv or url, not both"), nil
	case inline != "":
		data = []byte(inline)
	case strings.HasPrefix(rawURL, "data:"):
		data, err = decodeDataURI(rawURL)
	case rawURL != "":
		data, err = fetchHTTP(ctx, rawURL)
	default:
		return mcp.NewToolResultError("one of csv or url is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxCSVSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxCSVSize)), nil
	}
	if err := validateText(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := s.svc.ImportCSV(strings.NewReader(string(data)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI holding CSV.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}

	mime := strings.Split(meta, ";")[0]
	if mime != "" && !csvMIMETypes[mime] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	if !strings.Contains(meta, ";base64") {
		text, err := url.PathUnescape(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return []byte(text), nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a CSV file from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	if ct := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]); ct != "" && !csvMIMETypes[ct] {
		return nil, fmt.Errorf("unexpected content type: %s", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxCSVSize {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", maxCSVSize)
	}
	return data, nil
}

// checkBlockedHost rejects loopback, link-local and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	// Covers the AWS/GCP/Azure metadata endpoint 169.254.169.254.
	if ip.IsLinkLocalUnicast() {
		return fmt.Errorf("blocked host: link-local address %s", host)
	}
	return nil
}

// validateText rejects content that sniffs as binary.
func validateText(data []byte) error {
	detected := http.DetectContentType(data)
	if !strings.HasPrefix(detected, "text/") {
		return fmt.Errorf("content does not look like CSV text (detected: %s)", detected)
	}
	return nil
}
