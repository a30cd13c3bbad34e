package download

import (
	"fmt"

	"github.com/bogem/id3v2"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// TagAudio writes title and performer frames into the mp3 at path
func TagAudio(path string, meta model.MediaMetadata) error {
	if meta.Title == "" && meta.Performer == "" {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Performer != "" {
		tag.SetArtist(meta.Performer)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	return nil
}
