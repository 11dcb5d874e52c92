// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram implements digest delivery over the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.astrophena.name/tvfeed/internal/request"
	"go.astrophena.name/tvfeed/internal/version"
)

const (
	tgAPI          = "https://api.telegram.org"
	sendRetryLimit = 5    // N attempts to retry message sending
	messageLimit   = 4096 // runes per message, the Bot API cap
)

// Config configures a Telegram sender.
type Config struct {
	ChatID     string
	Token      string
	HTTPClient *http.Client
	Scrubber   *strings.Replacer
	Logger     *slog.Logger
}

// Sender sends messages to a Telegram chat.
type Sender struct {
	chatID      string
	token       string
	httpc       *http.Client
	scrubber    *strings.Replacer
	slog        *slog.Logger
	makeRequest func(context.Context, string, any) error
	sleep       func(context.Context, time.Duration) bool
}

// New returns a Telegram sender configured for a specific chat.
func New(cfg Config) *Sender {
	s := &Sender{
		chatID:   cfg.ChatID,
		token:    cfg.Token,
		httpc:    cfg.HTTPClient,
		scrubber: cfg.Scrubber,
		slog:     cfg.Logger,
	}
	if s.httpc == nil {
		s.httpc = request.DefaultClient
	}
	if s.slog == nil {
		s.slog = slog.Default()
	}
	s.makeRequest = s.makeTelegramRequest
	s.sleep = sleep
	return s
}

type message struct {
	ChatID             string `json:"chat_id"`
	Text               string `json:"text"`
	ParseMode          string `json:"parse_mode,omitempty"`
	LinkPreviewOptions struct {
		IsDisabled bool `json:"is_disabled"`
	} `json:"link_preview_options"`
}

// SendDigest delivers the parts of a rendered digest, packing as many parts
// into each message as the size cap allows. Parts are rendered in the HTML
// subset the Bot API accepts and never straddle a message boundary, unless a
// single part alone exceeds the cap.
func (s *Sender) SendDigest(ctx context.Context, parts []string) error {
	for _, chunk := range packParts(parts) {
		if err := s.send(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// send sends a single message, retrying when rate limited.
func (s *Sender) send(ctx context.Context, text string) error {
	msg := &message{ChatID: s.chatID, Text: text, ParseMode: "HTML"}
	msg.LinkPreviewOptions.IsDisabled = true

	var err error
	for range sendRetryLimit {
		err = s.makeRequest(ctx, "sendMessage", msg)
		if err == nil {
			return nil
		}

		retryable, wait := isRateLimited(err)
		if !retryable {
			break
		}

		s.slog.Warn("sending rate limited, waiting", slog.String("chat_id", s.chatID), slog.Duration("wait", wait))
		if !s.sleep(ctx, wait) {
			return ctx.Err()
		}
	}
	return err
}

func (s *Sender) makeTelegramRequest(ctx context.Context, method string, args any) error {
	if _, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    tgAPI + "/bot" + s.token + "/" + method,
		Body:   args,
		Headers: map[string]string{
			"User-Agent": version.UserAgent(),
		},
		HTTPClient: s.httpc,
		Scrubber:   s.scrubber,
	}); err != nil {
		return err
	}
	return nil
}

// packParts joins parts into chunks of at most messageLimit runes, keeping
// a blank line between parts within a chunk. A part that alone exceeds the
// cap is split at line and whitespace boundaries.
func packParts(parts []string) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n := utf8.RuneCountInString(part)
		if n > messageLimit {
			flush()
			chunks = append(chunks, splitText(part)...)
			continue
		}

		// The blank line separating parts counts against the cap too.
		if curLen > 0 && curLen+2+n > messageLimit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}
		cur.WriteString(part)
		curLen += n
	}
	flush()
	return chunks
}

func splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= messageLimit {
		return []string{text}
	}

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= messageLimit {
			chunks = append(chunks, text)
			break
		}

		var (
			lastNewline    = -1
			lastWhitespace = -1
			byteCap        = len(text)
			runeCount      int
		)

		for i, r := range text {
			if runeCount == messageLimit {
				byteCap = i
				break
			}
			runeCount++

			if r == '\n' {
				lastNewline = i
				continue
			}
			if unicode.IsSpace(r) {
				lastWhitespace = i
			}
		}

		splitAt := byteCap
		switch {
		case lastNewline > 0:
			splitAt = lastNewline
		case lastWhitespace > 0:
			splitAt = lastWhitespace
		}

		chunk := strings.TrimSpace(text[:splitAt])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[splitAt:])
	}

	return chunks
}

func isRateLimited(err error) (bool, time.Duration) {
	var statusErr *request.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		return false, 0
	}

	var errorResponse struct {
		Parameters struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(statusErr.Body, &errorResponse); err != nil {
		return false, 0
	}

	return true, time.Duration(errorResponse.Parameters.RetryAfter) * time.Second
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
