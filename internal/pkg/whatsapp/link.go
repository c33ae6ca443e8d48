// internal/pkg/whatsapp/link.go
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
)

// DefaultMaxLinkLength is the longest deep link the transport accepts
const DefaultMaxLinkLength = 4096

var (
	ErrNoPhone      = errors.New("whatsapp: destination phone is not configured")
	ErrLinkTooLong  = errors.New("whatsapp: message does not fit in a link")
	ErrEmptyMessage = errors.New("whatsapp: message is empty")
)

// LinkSink turns messages into wa.me deep links that the visitor's browser
// opens. Building the link is the whole dispatch; a link that could not be
// opened is reported as an error.
type LinkSink struct {
	baseURL string
	phone   string
	maxLen  int
	log     logrus.FieldLogger
}

// NewLinkSink creates a sink for the configured restaurant phone
func NewLinkSink(cfg config.WhatsAppConfig, log logrus.FieldLogger) *LinkSink {
	maxLen := cfg.MaxLinkLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLinkLength
	}
	return &LinkSink{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		phone:   Digits(cfg.Phone),
		maxLen:  maxLen,
		log:     log,
	}
}

// Send builds the deep link for message
func (s *LinkSink) Send(_ context.Context, message string) (string, error) {
	if s.phone == "" {
		return "", ErrNoPhone
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	link := Link(s.baseURL, s.phone, message)
	if len(link) > s.maxLen {
		s.log.WithFields(logrus.Fields{
			"length": len(link),
			"max":    s.maxLen,
		}).Warn("WhatsApp link exceeds transport limit")
		return "", fmt.Errorf("%w: %d > %d characters", ErrLinkTooLong, len(link), s.maxLen)
	}

	s.log.WithField("length", len(link)).Debug("WhatsApp link built")
	return link, nil
}

// Link builds "<base>/<phone>?text=<message>". Spaces are sent as %20.
func Link(baseURL, phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", baseURL, phone, text)
}

// Digits keeps only the digits of a phone number, e.g. "+55 (62) 99999-0000" -> "5562999990000"
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}
