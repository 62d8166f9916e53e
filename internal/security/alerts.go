package security

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	strutil "sentinela/pkg/platform/strings"
)

// dispatchAlert materializes a pending alert for the current admin
// recipients. Best-effort: every failure is logged and swallowed, because
// alerting is advisory and must never fail the ingest that triggered it.
func (s *Service) dispatchAlert(ctx context.Context, event Event) {
	admins, err := s.identity.AdminRecipients(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "alert dispatch: admin lookup failed", "error", err)
		s.metrics.IncAlertFailure()
		return
	}
	if len(admins) == 0 {
		return
	}

	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}

	alert := Alert{
		ID:         uuid.NewString(),
		Recipients: strutil.DedupeAndTrimLower(emails),
		EventData:  alertEventData(event),
		Status:     AlertStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertAlert(ctx, alert); err != nil {
		s.logger.ErrorContext(ctx, "alert dispatch: insert failed", "error", err, "event_id", event.ID)
		s.metrics.IncAlertFailure()
		return
	}
	s.metrics.IncAlertCreated()
}

// alertEventData snapshots the triggering event for the delivery worker.
// The user agent is parsed into browser/os so notification templates do not
// have to ship a parser.
func alertEventData(event Event) map[string]any {
	data := map[string]any{
		"event_type":  event.EventType,
		"severity":    string(event.Severity),
		"description": event.Description,
		"source_ip":   event.SourceIP,
		"timestamp":   event.CreatedAt.Format(time.RFC3339),
	}
	if event.UserAgent != "" {
		ua := useragent.New(event.UserAgent)
		browser, version := ua.Browser()
		if browser != "" {
			data["browser"] = browser
			if version != "" {
				data["browser_version"] = version
			}
		}
		if os := ua.OS(); os != "" {
			data["os"] = os
		}
	}
	return data
}
