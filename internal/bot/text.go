package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Media labels used in audit lines
const (
	MediaVideo = "video"
	MediaAudio = "audio"
)

const welcomeText = "Hello *%s*! Welcome!\n\n" +
	"Send me a video link from YouTube, Twitter, TikTok, Reddit or any other supported site " +
	"and I'll download it for you.\n\n" +
	"Commands:\n" +
	"- /download <url> - Download a video\n" +
	"- /audio <url> - Download audio only\n" +
	"- /custom <url> - Choose a custom format\n\n" +
	"In a private chat you can also just send me the link."

// WelcomeText renders the /start and /help reply for name
func WelcomeText(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(welcomeText, escapeMarkdown(name))
}

// CommandURL returns the link a command message points at: the first
// argument after the command, otherwise the text of the replied-to message.
func CommandURL(msg *tele.Message) string {
	if msg == nil {
		return ""
	}
	if fields := strings.Fields(msg.Text); len(fields) >= 2 {
		return fields[1]
	}
	if msg.ReplyTo != nil {
		return strings.TrimSpace(msg.ReplyTo.Text)
	}
	return ""
}

// PlainURL returns the text or media caption of a plain message
func PlainURL(msg *tele.Message) string {
	if msg == nil {
		return ""
	}
	if text := strings.TrimSpace(msg.Text); text != "" {
		return text
	}
	return strings.TrimSpace(msg.Caption)
}

// AuditText renders the line posted to the audit chat for a request
func AuditText(msg *tele.Message, text, media string) string {
	var chatInfo string
	if msg.Chat == nil || msg.Chat.Type == tele.ChatPrivate {
		chatInfo = "Private chat"
	} else {
		chatInfo = fmt.Sprintf("Group: %s (%d)", msg.Chat.Title, msg.Chat.ID)
	}

	var (
		username string
		userID   int64
	)
	if msg.Sender != nil {
		username, userID = msg.Sender.Username, msg.Sender.ID
	}

	return fmt.Sprintf("Download request (%s) from @%s (%d)\n\n%s\n\n%s", media, username, userID, chatInfo, text)
}

// MessageRef converts a telebot message
func MessageRef(msg *tele.Message) model.MessageRef {
	return refOf(msg)
}

func senderID(msg *tele.Message) int64 {
	if msg == nil || msg.Sender == nil {
		return 0
	}
	return msg.Sender.ID
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
