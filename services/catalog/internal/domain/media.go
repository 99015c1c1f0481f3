package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxFileSize is the largest accepted upload (10 MB).
const MaxFileSize int64 = 10 * 1024 * 1024

// ImageSize is a named rendition recorded for an uploaded image.
type ImageSize struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ImageSizes are the renditions advertised for every image. Files are not
// resized; the sizes are stored as metadata for clients.
var ImageSizes = []ImageSize{
	{Name: "thumbnail", Width: 400, Height: 300},
	{Name: "card", Width: 768, Height: 576},
	{Name: "hero", Width: 1920, Height: 1080},
}

// Media is an uploaded file.
type Media struct {
	ID         int64       `json:"id"`
	Filename   string      `json:"filename"`
	StorageKey string      `json:"-"`
	Alt        string      `json:"alt"`
	MimeType   string      `json:"mimeType"`
	Filesize   int64       `json:"filesize"`
	URL        string      `json:"url"`
	Width      *int        `json:"width"`
	Height     *int        `json:"height"`
	Sizes      []ImageSize `json:"sizes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// IsAllowedContentType reports whether an upload with this MIME type is accepted.
func IsAllowedContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && len(contentType) > len("image/")
}

// MediaRef is an image reference inside a product: either a bare media id or
// the media record itself.
type MediaRef struct {
	id       int64
	resolved *Media
}

// UnresolvedMedia returns a reference that only carries the id.
func UnresolvedMedia(id int64) MediaRef {
	return MediaRef{id: id}
}

// ResolvedMedia returns a reference carrying the full media record.
func ResolvedMedia(m Media) MediaRef {
	return MediaRef{id: m.ID, resolved: &m}
}

func (r MediaRef) ID() int64 { return r.id }

func (r MediaRef) Media() (Media, bool) {
	if r.resolved == nil {
		return Media{}, false
	}
	return *r.resolved, true
}

func (r MediaRef) IsZero() bool { return r.id == 0 && r.resolved == nil }

func (r MediaRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.resolved != nil:
		return json.Marshal(r.resolved)
	case r.id == 0:
		return []byte("null"), nil
	default:
		return json.Marshal(r.id)
	}
}

func (r *MediaRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = MediaRef{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var m Media
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if m.ID == 0 {
			return fmt.Errorf("media reference: object without id")
		}
		*r = ResolvedMedia(m)
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("media reference: expected number or object: %w", err)
		}
		*r = UnresolvedMedia(id)
		return nil
	}
}
