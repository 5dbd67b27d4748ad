package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"fashionai/internal/models"
	"fashionai/internal/observability"
)

const cloudflareAPIBase = "https://api.cloudflare.com/client/v4"

// ImageHost stores an image and returns its public delivery URL.
type ImageHost interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// CloudflareImages uploads to the Cloudflare Images v1 API.
type CloudflareImages struct {
	accountID   string
	apiKey      string
	accountHash string
	baseURL     string
	client      *http.Client
}

// NewCloudflareImages creates a CloudflareImages client. baseURL may be empty for the public API.
func NewCloudflareImages(accountID, apiKey, accountHash, baseURL string) *CloudflareImages {
	if baseURL == "" {
		baseURL = cloudflareAPIBase
	}
	return &CloudflareImages{
		accountID:   accountID,
		apiKey:      apiKey,
		accountHash: accountHash,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type cfUploadResponse struct {
	Success bool `json:"success"`
	Result  struct {
		ID string `json:"id"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *CloudflareImages) Upload(ctx context.Context, filename, contentType string, data []byte) (url string, err error) {
	start := time.Now()
	ctx, span := observability.StartClientSpan(ctx, "cloudflare", "images.upload")
	defer func() {
		observability.ObserveUpstream("cloudflare", start, err)
		observability.EndSpan(span, err)
	}()

	if c.accountID == "" || c.apiKey == "" || c.accountHash == "" {
		return "", models.NewInternalError(fmt.Errorf("Cloudflare Images is not configured"))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if _, err := part.Write(data); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := mw.Close(); err != nil {
		return "", models.NewInternalError(err)
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/images/v1", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", models.NewUpstreamTimeoutError(err)
		}
		return "", models.NewUpstreamError(0, "Failed to upload image", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", models.NewUpstreamError(resp.StatusCode, "Failed to read image host response", err)
	}

	var parsed cfUploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", models.NewUpstreamError(resp.StatusCode, "Invalid response from image host", err)
	}

	if resp.StatusCode >= 300 || !parsed.Success || parsed.Result.ID == "" {
		message := "Failed to upload image"
		if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
			message = parsed.Errors[0].Message
		}
		status := resp.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		return "", models.NewUpstreamError(status, message, &StatusError{Provider: "Cloudflare", Status: resp.StatusCode, Body: string(raw)})
	}

	return fmt.Sprintf("https://imagedelivery.net/%s/%s/public", c.accountHash, parsed.Result.ID), nil
}
