package download

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
)

// Catalog is the probed format listing of a URL
type Catalog struct {
	URL       string
	Title     string
	Thumbnail string
	Formats   []model.FormatDescriptor
}

// VideoFormats returns the formats that carry a video stream, in extractor order
func (c *Catalog) VideoFormats() []model.FormatDescriptor {
	var out []model.FormatDescriptor
	for _, f := range c.Formats {
		if f.HasVideo {
			out = append(out, f)
		}
	}
	return out
}

// Resolve probes url without downloading it. An empty format list is not an error.
func (e *Executor) Resolve(ctx context.Context, rawURL string) (*Catalog, error) {
	url, err := platform.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	probed, err := e.extractor.Probe(ctx, url)
	if err != nil {
		return nil, &model.ExtractionError{URL: url, Err: err}
	}

	return &Catalog{
		URL:       url,
		Title:     probed.Title,
		Thumbnail: probed.Thumbnail,
		Formats:   probed.Formats,
	}, nil
}
