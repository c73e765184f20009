package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/reelhaven/reelhaven/internal/logger"
)

// NotifierService pushes admin-facing events (new access requests, new
// movie requests) to an external channel via a shoutrrr URL. Delivery is
// fire-and-forget: a failed or unconfigured notifier never affects the
// request that raised the event.
type NotifierService struct {
	url  string
	send func(url, message string) error
}

func NewNotifierService(url string) *NotifierService {
	return &NotifierService{url: url, send: shoutrrr.Send}
}

// Enabled reports whether a delivery URL is configured.
func (s *NotifierService) Enabled() bool {
	return s.url != ""
}

// Notify delivers a message asynchronously. Safe to call when disabled.
func (s *NotifierService) Notify(title, message string) {
	if !s.Enabled() {
		return
	}
	go func() {
		msg := fmt.Sprintf("%s\n\n%s", title, message)
		if err := s.send(s.url, msg); err != nil {
			logger.WithFields(map[string]interface{}{
				"title": title,
			}).WithError(err).Warn("failed to deliver notification")
		}
	}()
}
