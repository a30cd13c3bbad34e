// Package bot connects the pipeline to Telegram through telebot: it routes
// commands and plain private messages, implements the delivery transport and
// posts audit lines to an optional log chat.
package bot
