// Package notify posts finished advice reports to a chat channel.
package notify

import (
	"context"
	"fmt"
	"strings"

	"finova/internal/models"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLen is Discord's per-message content limit.
const maxMessageLen = 2000

// Notifier announces newly generated advice reports.
type Notifier interface {
	NotifyAdvice(ctx context.Context, report models.AdviceReport) error
}

// Nop drops notifications.
type Nop struct{}

// NotifyAdvice implements Notifier.
func (Nop) NotifyAdvice(context.Context, models.AdviceReport) error { return nil }

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts reports to one channel through the bot REST API.
type Discord struct {
	sender    messageSender
	channelID string
}

var (
	_ Notifier = Nop{}
	_ Notifier = (*Discord)(nil)
)

// NewDiscord creates a notifier authenticated with a bot token.
func NewDiscord(botToken, channelID string) (*Discord, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("discord bot token and channel id are required")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &Discord{sender: session, channelID: channelID}, nil
}

// NotifyAdvice posts a heading and the report content, split to fit the
// message size limit.
func (d *Discord) NotifyAdvice(ctx context.Context, report models.AdviceReport) error {
	heading := fmt.Sprintf("**Weekly financial report** (%s, week of %s)\n", report.Owner, report.WeekOf)
	for _, chunk := range Chunk(heading+report.Content, maxMessageLen) {
		if _, err := d.sender.ChannelMessageSend(d.channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send discord message: %w", err)
		}
	}
	return nil
}

// Chunk splits s into pieces of at most limit bytes, preferring line breaks
// and never splitting a UTF-8 sequence.
func Chunk(s string, limit int) []string {
	var chunks []string
	for len(s) > limit {
		cut := strings.LastIndex(s[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8Start(s[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimPrefix(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
