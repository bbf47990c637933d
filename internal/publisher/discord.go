package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/ryosukesatoh/doc-digest/internal/retry"
	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

const (
	discordColor          = 0x5865F2
	discordMaxDescription = 4096
	discordMaxTitle       = 256
	discordMaxFooter      = 2048
	discordMaxEmbeds      = 10
	discordMaxChars       = 6000
)

// Discord allows roughly 5 webhook requests per 2 seconds.
const (
	discordRequestsPerSecond = 2.5
	discordBurst             = 5
)

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// DiscordPublisher posts summaries to a Discord channel via webhook.
type DiscordPublisher struct {
	webhookURL  string
	client      *http.Client
	retryConfig retry.Config
	limiter     *rate.Limiter
}

func NewDiscordPublisher(webhookURL string) *DiscordPublisher {
	return &DiscordPublisher{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		retryConfig: retry.DefaultConfig(),
		limiter:     rate.NewLimiter(discordRequestsPerSecond, discordBurst),
	}
}

// Publish sends the summary as one or more embeds, batched to Discord limits.
func (d *DiscordPublisher) Publish(ctx context.Context, summary *summarizer.Summary) error {
	batches := batchEmbeds(buildEmbeds(summary))

	for i, batch := range batches {
		err := retry.WithBackoff(ctx, d.retryConfig, func(ctx context.Context) error {
			if d.limiter != nil {
				if err := d.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			return d.sendWebhook(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("discord: failed to send batch %d: %w", i+1, err)
		}
	}
	return nil
}

// buildEmbeds packs the selected sentences into as few embeds as the
// description limit allows. The first embed carries the title, the last
// one the footer.
func buildEmbeds(summary *summarizer.Summary) []discordEmbed {
	var chunks []string
	var cur strings.Builder
	for _, sent := range summary.Sentences {
		sent = truncate(summarizer.StripMarkup(sent), discordMaxDescription)
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(sent) > discordMaxDescription {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(sent)
	}
	if cur.Len() > 0 || len(chunks) == 0 {
		chunks = append(chunks, cur.String())
	}

	embeds := make([]discordEmbed, len(chunks))
	for i, c := range chunks {
		embeds[i] = discordEmbed{Description: c, Color: discordColor}
	}
	embeds[0].Title = truncate("Summary: "+summary.Source, discordMaxTitle)
	last := &embeds[len(embeds)-1]
	last.Footer = &discordEmbedFooter{Text: truncate(summary.Date.Format("2006-01-02 15:04"), discordMaxFooter)}
	last.Timestamp = summary.Date.Format(time.RFC3339)
	return embeds
}

// batchEmbeds splits embeds into batches respecting Discord limits:
// max 10 embeds per message, max 6000 total characters per message.
func batchEmbeds(embeds []discordEmbed) [][]discordEmbed {
	var batches [][]discordEmbed
	var current []discordEmbed
	currentChars := 0

	for _, e := range embeds {
		ec := embedCharCount(e)

		if len(current) > 0 && (len(current) >= discordMaxEmbeds || currentChars+ec > discordMaxChars) {
			batches = append(batches, current)
			current = nil
			currentChars = 0
		}

		current = append(current, e)
		currentChars += ec
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}

func (d *DiscordPublisher) sendWebhook(ctx context.Context, embeds []discordEmbed) error {
	body, err := json.Marshal(discordWebhookPayload{Embeds: embeds})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.StatusError{Code: resp.StatusCode}
	}
	return nil
}

// truncate shortens s to max characters, preferring a sentence boundary.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := string(runes[:max-1])
	if idx := strings.LastIndexAny(cut, ".!?"); idx > len(cut)/2 {
		return cut[:idx+1]
	}
	return cut + "\u2026"
}

func embedCharCount(e discordEmbed) int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	if e.Footer != nil {
		n += utf8.RuneCountInString(e.Footer.Text)
	}
	return n
}
