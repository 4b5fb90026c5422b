package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tellurian-uas/gomavlink/dialect"
	"github.com/tellurian-uas/gomavlink/frame"
	"github.com/tellurian-uas/gomavlink/internal/metrics"
)

// heartbeatPublisher publishes every decoded HEARTBEAT seen on the relay to
// a Redis pub/sub channel, so other processes on the host (a dashboard, a
// state tracker) can observe vehicle liveness without speaking MAVLink
// themselves.
type heartbeatPublisher struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
}

type heartbeatEvent struct {
	SystemID      uint8  `json:"system_id"`
	ComponentID   uint8  `json:"component_id"`
	Type          uint8  `json:"type"`
	Autopilot     uint8  `json:"autopilot"`
	BaseMode      uint8  `json:"base_mode"`
	SystemStatus  uint8  `json:"system_status"`
	MavlinkVer    uint8  `json:"mavlink_version"`
	ProtocolMajor string `json:"protocol"`
}

func newHeartbeatPublisher(addr string, log *slog.Logger) (*heartbeatPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &heartbeatPublisher{client: client, log: log}, nil
}

// publish is called from a relay reader goroutine whenever it decodes a
// HEARTBEAT; non-HEARTBEAT messages are ignored. Publish errors are logged
// and counted, never fatal to the relay.
func (p *heartbeatPublisher) publish(channel string, f frame.Frame) {
	hb, ok := f.Message.(dialect.Heartbeat)
	if !ok {
		return
	}
	ev := heartbeatEvent{
		SystemID:      f.Header.SystemID,
		ComponentID:   f.Header.ComponentID,
		Type:          hb.Type,
		Autopilot:     hb.Autopilot,
		BaseMode:      hb.BaseMode,
		SystemStatus:  hb.SystemStatus,
		MavlinkVer:    hb.MavlinkVersion,
		ProtocolMajor: f.ProtocolVersion.String(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("heartbeat_marshal_error", "error", err)
		metrics.IncError(metrics.ErrRedisPublish)
		return
	}
	if err := p.client.Publish(context.Background(), channel, payload).Err(); err != nil {
		p.log.Warn("redis_publish_error", "error", err)
		metrics.IncError(metrics.ErrRedisPublish)
	}
}

func (p *heartbeatPublisher) Close() error { return p.client.Close() }
