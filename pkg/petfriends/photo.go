package petfriends

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/petfriends-verifier/pkg/httpclient"
	"github.com/spf13/afero"
)

const defaultPhotoContentType = "application/octet-stream"

// SetPhoto attaches a photo to petID, replacing any existing one.
func (c *Client) SetPhoto(ctx context.Context, key AuthKey, petID, photoPath string) (int, Body, error) {
	part, err := c.photoPart(photoPath)
	if err != nil {
		return 0, Body{}, err
	}
	return c.do(ctx, "set photo", httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint("pets", "set_photo", petID),
		Headers: authHeaders(key),
		Files:   []httpclient.FilePart{part},
	})
}

// photoPart loads photoPath fully so the file is closed before the request is sent.
func (c *Client) photoPart(photoPath string) (httpclient.FilePart, error) {
	data, err := afero.ReadFile(c.photos, photoPath)
	if err != nil {
		return httpclient.FilePart{}, fmt.Errorf("%w %q: %w", ErrPhotoUnreadable, photoPath, err)
	}
	return httpclient.FilePart{
		Field:       fieldPhoto,
		FileName:    filepath.Base(photoPath),
		ContentType: PhotoContentType(photoPath),
		Reader:      bytes.NewReader(data),
	}, nil
}

// PhotoContentType derives the multipart content type from the file extension.
func PhotoContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return defaultPhotoContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultPhotoContentType
}
