package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Generic format specs understood by the extractor
const (
	FormatVideo       = "mp4"
	FormatAudio       = "bestaudio/best"
	FormatAudioSuffix = "+bestaudio"
)

// MessageRef identifies a chat message
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference points nowhere
func (m MessageRef) IsZero() bool {
	return m.ChatID == 0 && m.MessageID == 0
}

// RequestKey scopes per-request state: chat plus status message
type RequestKey struct {
	ChatID    int64
	MessageID int
}

// KeyFor builds the key of the request whose status message is msg
func KeyFor(msg MessageRef) RequestKey {
	return RequestKey{ChatID: msg.ChatID, MessageID: msg.MessageID}
}

// String returns "<chat>-<message>"
func (k RequestKey) String() string {
	return fmt.Sprintf("%d-%d", k.ChatID, k.MessageID)
}

// Message returns the status message the key was derived from
func (k RequestKey) Message() MessageRef {
	return MessageRef{ChatID: k.ChatID, MessageID: k.MessageID}
}

// ParseRequestKey parses the String form back into a key.
// Chat ids can be negative, so the split happens on the last dash.
func ParseRequestKey(s string) (RequestKey, error) {
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return RequestKey{}, fmt.Errorf("malformed request key: %q", s)
	}
	chatID, err := strconv.ParseInt(s[:idx], 10, 64)
	if err != nil {
		return RequestKey{}, fmt.Errorf("malformed chat id in request key %q: %w", s, err)
	}
	msgID, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return RequestKey{}, fmt.Errorf("malformed message id in request key %q: %w", s, err)
	}
	return RequestKey{ChatID: chatID, MessageID: msgID}, nil
}

// Request represents one user-initiated media fetch
type Request struct {
	Key         RequestKey
	Prefix      string     // unique artifact file prefix
	Command     string     // command that created the request, used in usage hints
	Origin      MessageRef // message the user sent
	RequesterID int64
	SourceURL   string
	FormatSpec  string
	AudioOnly   bool
	Status      RequestStatus
	Title       string    // media title once known
	LastError   string    // last error message if any
	StartedAt   time.Time // when the request was created
	FinishedAt  time.Time // when the request reached Done or Failed
}

// SelectedFormatSpec combines an interactively chosen format id with a best-audio track
func SelectedFormatSpec(formatID string) string {
	return formatID + FormatAudioSuffix
}

// FormatDescriptor is one candidate encoding offered during interactive selection
type FormatDescriptor struct {
	FormatID   string
	Resolution string
	Height     int
	Ext        string
	HasVideo   bool
	HasAudio   bool
}

// Label returns the button label "<resolution>.<ext>"
func (f FormatDescriptor) Label() string {
	return f.Resolution + "." + f.Ext
}

// ArtifactKind tells how an artifact was produced
type ArtifactKind string

const (
	ArtifactRaw        ArtifactKind = "raw-download"
	ArtifactCompressed ArtifactKind = "compressed"
	ArtifactConverted  ArtifactKind = "converted"
	ArtifactAudio      ArtifactKind = "audio-extracted"
)

// ArtifactFile is a temporary file on local storage owned by one request
type ArtifactFile struct {
	Path      string
	SizeBytes int64
	Kind      ArtifactKind
}

// MediaKind selects the outbound message type
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// MediaMetadata carries what is known about the delivered media
type MediaMetadata struct {
	Title     string
	Performer string
	Width     int
	Height    int
	Duration  int // seconds
}
