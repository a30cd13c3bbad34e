package download

// Package download implements the fetch side of the pipeline on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp): URL validation before any network call,
// format catalog probing, fetching into prefix-named artifacts, forwarding of
// raw progress onto the progress channel, and ID3 tagging of extracted audio.
