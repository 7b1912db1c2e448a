package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const attrContentType = "content-type"

// Channels carrying asset lifecycle events.
const (
	ChannelAssetUploaded = "asset.uploaded"
	ChannelAssetDeleted  = "asset.deleted"
)

// AssetEvent is the payload published when an asset is created or
// removed. Consumers (thumbnailers, cache invalidators) subscribe to
// the channels above.
type AssetEvent struct {
	AssetID    string    `json:"asset_id"`
	AssetType  string    `json:"asset_type"`
	FileURL    string    `json:"file_url"`
	UploaderID string    `json:"uploader_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations the event bus needs.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ is the asset event bus over a pluggable broker backend.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// PublishAssetEvent marshals and publishes an asset event. Publishing
// is best effort at call sites; a broker failure never fails the
// originating flow.
func (m *MQ) PublishAssetEvent(ctx context.Context, channel string, event AssetEvent) (string, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return m.Publish(ctx, channel, data, map[string]string{attrContentType: "application/json"})
}

// SubscribeAssetEvents consumes a channel and decodes each message
// into an AssetEvent before handing it off. Undecodable messages are
// dropped, not retried.
func (m *MQ) SubscribeAssetEvents(ctx context.Context, channel string, handle func(ctx context.Context, event AssetEvent) error) error {
	return m.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		var event AssetEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return handle(ctx, event)
	})
}

// Publish sends a raw message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("channel is required")
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes raw messages from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("channel is required")
	}
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
