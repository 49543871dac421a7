package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/gamingty/storefront/pkg/kafka"
)

// Topics consumed from the auth service. The logged_in transition drives the
// wishlist pending-action replay; logged_out clears any parked action so a
// stale add can never replay under a different identity.
const (
	TopicAuthLoggedIn  = "gamingty.auth.logged_in"
	TopicAuthLoggedOut = "gamingty.auth.logged_out"
)

// ConsumerGroupID is the Kafka consumer group for this service.
const ConsumerGroupID = "storefront"

// LoggedInData is the payload of an auth.logged_in event.
type LoggedInData struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	Token    string `json:"token"`
}

// LoggedOutData is the payload of an auth.logged_out event.
type LoggedOutData struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

// SessionHandler reacts to session transitions.
type SessionHandler interface {
	// HandleLogin is called when a client's session becomes authenticated.
	HandleLogin(ctx context.Context, userID, clientID, token string) error

	// HandleLogout is called when a client's session ends.
	HandleLogout(ctx context.Context, userID, clientID string) error
}

// SessionConsumerHandler routes auth events to the session handler.
type SessionConsumerHandler struct {
	sessions SessionHandler
	logger   *slog.Logger
}

// NewSessionConsumerHandler creates a new auth event handler.
func NewSessionConsumerHandler(sessions SessionHandler, logger *slog.Logger) *SessionConsumerHandler {
	return &SessionConsumerHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *SessionConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicAuthLoggedIn:
		return h.handleLoggedIn(ctx, event)
	case TopicAuthLoggedOut:
		return h.handleLoggedOut(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *SessionConsumerHandler) handleLoggedIn(ctx context.Context, event *pkgkafka.Event) error {
	var data LoggedInData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode logged_in payload: %w", err)
	}

	h.logger.InfoContext(ctx, "session authenticated",
		slog.String("event_id", event.EventID),
		slog.String("user_id", data.UserID),
		slog.String("client_id", data.ClientID),
	)

	return h.sessions.HandleLogin(ctx, data.UserID, data.ClientID, data.Token)
}

func (h *SessionConsumerHandler) handleLoggedOut(ctx context.Context, event *pkgkafka.Event) error {
	var data LoggedOutData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode logged_out payload: %w", err)
	}

	h.logger.InfoContext(ctx, "session ended",
		slog.String("event_id", event.EventID),
		slog.String("user_id", data.UserID),
		slog.String("client_id", data.ClientID),
	)

	return h.sessions.HandleLogout(ctx, data.UserID, data.ClientID)
}
