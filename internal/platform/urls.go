package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// URL schemes accepted by the extractor
const (
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
	SchemePrefix = "https://"
)

// YouTubeHosts are the hosts whose links must carry an 11 character video id
var YouTubeHosts = []string{
	"www.youtube.com",
	"youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
	"www.youtube-nocookie.com",
	"youtube-nocookie.com",
}

var youtubePattern = regexp.MustCompile(
	`^(https?://)?(www\.|m\.|music\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/` +
		`(watch\?v=|embed/|v/|shorts/|live/|.+?v=)?([^&=%?]{11})`,
)

// ValidateURL normalizes raw into an absolute http(s) URL and applies the
// structural check of recognized platforms. It never touches the network.
// A bare "host.tld/path" gets an https scheme.
func ValidateURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" || strings.ContainsAny(candidate, " \t\r\n") {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidURL, raw)
	}

	if !strings.Contains(candidate, "://") {
		host := strings.SplitN(candidate, "/", 2)[0]
		if !strings.Contains(host, ".") {
			return "", fmt.Errorf("%w: %q has no scheme and no host", model.ErrInvalidURL, raw)
		}
		candidate = SchemePrefix + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidURL, err)
	}
	if parsed.Scheme != SchemeHTTP && parsed.Scheme != SchemeHTTPS {
		return "", fmt.Errorf("%w: unsupported scheme %q", model.ErrInvalidURL, parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: missing host in %q", model.ErrInvalidURL, raw)
	}

	if IsYouTubeHost(host) && !youtubePattern.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q is not a video link", model.ErrInvalidURL, raw)
	}

	return candidate, nil
}

// IsYouTubeHost reports whether host belongs to the YouTube link family
func IsYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range YouTubeHosts {
		if host == h {
			return true
		}
	}
	return false
}
