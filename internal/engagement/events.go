// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/media"
)

// TopicIncrement carries IncrementRequested events.
const TopicIncrement = "engagement.increment"

// IncrementRequested asks the syncer to apply one op to the backend.
type IncrementRequested struct {
	OpID        string        `json:"op_id"`
	Action      string        `json:"action"`
	ItemID      string        `json:"item_id"`
	Kind        media.Kind    `json:"kind"`
	Counter     media.Counter `json:"counter"`
	Delta       int64         `json:"delta"`
	RequestedAt time.Time     `json:"requested_at"`
}

func newIncrementMessage(op *Op) (*message.Message, error) {
	payload, err := json.Marshal(IncrementRequested{
		OpID:        op.ID,
		Action:      op.Action,
		ItemID:      op.ItemID,
		Kind:        op.Kind,
		Counter:     op.Counter,
		Delta:       op.Delta,
		RequestedAt: op.RequestedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode increment: %w", err)
	}
	// a fresh UUID per delivery; the op ID inside the payload is the idempotency key
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("op_id", op.ID)
	msg.Metadata.Set("action", op.Action)
	return msg, nil
}

func decodeIncrement(msg *message.Message) (IncrementRequested, error) {
	var ev IncrementRequested
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode increment %s: %w", msg.UUID, err)
	}
	if ev.OpID == "" || ev.ItemID == "" || !ev.Counter.Valid() {
		return ev, fmt.Errorf("%w: malformed increment %s", media.ErrValidation, msg.UUID)
	}
	return ev, nil
}

// NewBus creates the in-process pub/sub that links the Store to the Syncer.
func NewBus(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 1024,
	}, logger)
}
