package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// NATS subjects for pronunciation practice events
const (
	SubjectUpdates      = "loqa.pronounce.updates"
	SubjectPlayRequests = "loqa.pronounce.play"
)

// PlayRequest asks the hub to play the cached clip for a word.
type PlayRequest struct {
	Word      string `json:"word"`
	Timestamp int64  `json:"timestamp"`
}

// NATSService publishes pipeline updates to NATS and accepts remote play
// requests. The service is optional: a hub without a broker runs fine.
type NATSService struct {
	conn *nats.Conn
	cfg  config.NATSConfig
}

// NewNATSService creates a new NATS service instance
func NewNATSService(cfg config.NATSConfig) *NATSService {
	return &NATSService{cfg: cfg}
}

// Connect establishes connection to NATS server
func (ns *NATSService) Connect() error {
	logging.Sugar.Infof("🔌 Connecting to NATS at %s", ns.cfg.URL)

	// Connection options with retry logic
	opts := []nats.Option{
		nats.Name("loqa-pronounce"),
		nats.ReconnectWait(ns.cfg.ReconnectWait),
		nats.MaxReconnects(ns.cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Sugar.Warnf("⚠️  NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Sugar.Infof("🔄 NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.Sugar.Info("🔌 NATS connection closed")
		}),
	}

	conn, err := nats.Connect(ns.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	logging.Sugar.Infof("✅ Connected to NATS server at %s", conn.ConnectedUrl())
	return nil
}

// Publish forwards one serialized update event to the updates subject. The
// payload is the same JSON the SSE stream carries.
func (ns *NATSService) Publish(data []byte) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	if err := ns.conn.Publish(SubjectUpdates, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectUpdates, err)
	}

	return nil
}

// SubscribeToPlayRequests subscribes to remote clip playback requests.
func (ns *NATSService) SubscribeToPlayRequests(handler func(word string)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe(SubjectPlayRequests, func(msg *nats.Msg) {
		var req PlayRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logging.LogError(err, "Failed to unmarshal play request")
			return
		}

		logging.LogNATSEvent(SubjectPlayRequests, "received")
		handler(req.Word)
	})
}

// PublishPlayRequest asks any listening hub to play the clip for word.
func (ns *NATSService) PublishPlayRequest(word string) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(PlayRequest{Word: word, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to marshal play request: %w", err)
	}

	if err := ns.conn.Publish(SubjectPlayRequests, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectPlayRequests, err)
	}

	return nil
}

// Close drains and closes the NATS connection.
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
		ns.conn = nil
	}
}

// Connected reports whether the service holds a live connection.
func (ns *NATSService) Connected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}
