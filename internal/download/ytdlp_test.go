package download

import (
	"testing"
)

func TestParseInfo(t *testing.T) {
	output := `[youtube] Extracting URL
not json
{"title": "Clip", "uploader": "Someone", "width": 1280, "height": 720, "duration": 42.5, "thumbnail": "https://i.ytimg.com/x.jpg",
 "formats": []}
{"title": "Clip", "uploader": "Someone", "width": 1280, "height": 720, "duration": 42.5, "thumbnail": "https://i.ytimg.com/x.jpg", "formats": [{"format_id": "137", "resolution": "1920x1080", "height": 1080, "ext": "mp4", "video_ext": "mp4", "audio_ext": "none", "vcodec": "avc1", "acodec": "none"}]}
`
	info, err := parseInfo(output)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.Title != "Clip" || info.Uploader != "Someone" {
		t.Errorf("Unexpected info: %+v", info)
	}
	if int(info.Width) != 1280 || int(info.Height) != 720 || int(info.Duration) != 42 {
		t.Errorf("Unexpected dimensions: %vx%v %v", info.Width, info.Height, info.Duration)
	}
	if len(info.Formats) != 1 {
		t.Errorf("Expected the last json line to win, got %d formats", len(info.Formats))
	}
}

func TestParseInfo_NoJSON(t *testing.T) {
	if _, err := parseInfo("ERROR: something\n"); err == nil {
		t.Error("Expected error when output has no json")
	}
}

func TestDescriptors(t *testing.T) {
	info := &ytdlpInfo{
		Formats: []ytdlpFormat{
			{FormatID: "140", Resolution: "audio only", Ext: "m4a", VideoExt: "none", AudioExt: "m4a", VCodec: "none", ACodec: "mp4a"},
			{FormatID: "137", Resolution: "1920x1080", Height: 1080, Ext: "mp4", VideoExt: "mp4", AudioExt: "none", VCodec: "avc1", ACodec: "none"},
			{FormatID: "18", Resolution: "640x360", Height: 360, Ext: "mp4", VCodec: "avc1", ACodec: "mp4a"},
			{FormatID: "sb0", Resolution: "48x27", Ext: "mhtml", VCodec: "none", ACodec: "none"},
			{FormatID: ""},
		},
	}

	got := info.descriptors()
	if len(got) != 4 {
		t.Fatalf("Expected 4 descriptors, got %d", len(got))
	}

	tests := []struct {
		id       string
		hasVideo bool
		hasAudio bool
	}{
		{"140", false, true},
		{"137", true, false},
		{"18", true, true},
		{"sb0", false, false},
	}
	for i, tt := range tests {
		if got[i].FormatID != tt.id {
			t.Errorf("Expected format %s at %d, got %s", tt.id, i, got[i].FormatID)
			continue
		}
		if got[i].HasVideo != tt.hasVideo || got[i].HasAudio != tt.hasAudio {
			t.Errorf("Format %s: expected video=%v audio=%v, got video=%v audio=%v",
				tt.id, tt.hasVideo, tt.hasAudio, got[i].HasVideo, got[i].HasAudio)
		}
	}
	if got[1].Label() != "1920x1080.mp4" {
		t.Errorf("Expected label '1920x1080.mp4', got '%s'", got[1].Label())
	}
}
