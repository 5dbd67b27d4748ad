package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"fashionai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, token, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-to-cloudflare", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSniffImage(t *testing.T) {
	contentType, err := sniffImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	_, err = sniffImage([]byte("definitely not an image"))
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t, false)
	token := env.register(t, "u@example.com", "uploader")

	resp, err := env.app.Test(multipartRequest(t, token, "shirt.png", pngBytes(t)), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://imagedelivery.net/hash/img-1/public", decode[models.ImageUploadResponse](t, resp).ImageURL)
	assert.Equal(t, "image/png", env.images.contentType)

	resp, err = env.app.Test(multipartRequest(t, token, "notes.txt", []byte("hello")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	big := append(pngBytes(t), bytes.Repeat([]byte{0}, 1024*1024+1)...)
	resp, err = env.app.Test(multipartRequest(t, token, "big.png", big), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestUploadImageUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, false)
	token := env.register(t, "f@example.com", "failer")
	env.images.err = models.NewUpstreamError(0, "Failed to upload image", nil)

	resp, err := env.app.Test(multipartRequest(t, token, "shirt.png", pngBytes(t)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, models.CodeUpstream, decode[models.ErrorResponse](t, resp).Code)
}
