package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/model"
)

// reminderCommand is the wire format published to the device.
type reminderCommand struct {
	MessageID string   `json:"message_id"`
	Action    string   `json:"action"` // "schedule", "cancel", "cancel_all"
	IDs       []string `json:"ids,omitempty"`
	Title     string   `json:"title,omitempty"`
	Body      string   `json:"body,omitempty"`
	At        string   `json:"at,omitempty"` // RFC3339
	Sound     string   `json:"sound,omitempty"`
	SoundName string   `json:"sound_name,omitempty"`
}

type permissionReport struct {
	Status string `json:"status"`
}

// MQTTSink bridges reminder commands to the paired device over MQTT and
// listens for its permission reports.
type MQTTSink struct {
	client   mqtt.Client
	deviceID string

	mu          sync.Mutex // guards closed and sends on permissions
	closed      bool
	permissions chan model.PermissionStatus
}

var _ Sink = (*MQTTSink)(nil)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewMQTTSink connects to the broker and subscribes to the device's
// permission topic.
func NewMQTTSink(brokerURL, deviceID string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("miqat-server-%s", deviceID))
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	s := &MQTTSink{
		client:      client,
		deviceID:    deviceID,
		permissions: make(chan model.PermissionStatus, 8),
	}

	topic := fmt.Sprintf("miqat/%s/permissions", deviceID)
	if token := client.Subscribe(topic, 1, s.onPermissionMessage); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	log.Info().Str("device", deviceID).Msg("MQTT sink initialized")
	return s, nil
}

func (s *MQTTSink) onPermissionMessage(_ mqtt.Client, msg mqtt.Message) {
	var report permissionReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("malformed permission report")
		return
	}
	status := model.PermissionStatus(report.Status)
	switch status {
	case model.PermissionGranted, model.PermissionDenied, model.PermissionUnknown:
	default:
		log.Warn().Str("status", report.Status).Msg("unknown permission status")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// a report delivered mid-teardown is dropped
		return
	}
	select {
	case s.permissions <- status:
	default:
		log.Warn().Msg("permission stream backed up, dropping report")
	}
}

func (s *MQTTSink) publish(ctx context.Context, cmd reminderCommand) error {
	cmd.MessageID = uuid.NewString()
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("miqat/%s/reminders", s.deviceID)
	token := s.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (s *MQTTSink) Schedule(ctx context.Context, r Reminder) error {
	return s.publish(ctx, reminderCommand{
		Action:    "schedule",
		IDs:       []string{string(r.ID)},
		Title:     r.Title,
		Body:      r.Body,
		At:        r.At.Format(time.RFC3339),
		Sound:     string(r.Sound),
		SoundName: r.SoundName,
	})
}

func (s *MQTTSink) Cancel(ctx context.Context, id model.ReminderID) error {
	return s.publish(ctx, reminderCommand{
		Action: "cancel",
		IDs:    []string{string(id)},
	})
}

func (s *MQTTSink) CancelAll(ctx context.Context, ids []model.ReminderID) error {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	return s.publish(ctx, reminderCommand{
		Action: "cancel_all",
		IDs:    raw,
	})
}

func (s *MQTTSink) Permissions() <-chan model.PermissionStatus {
	return s.permissions
}

// Close unsubscribes the permission topic and disconnects the client
// before closing the permission channel, so no subscribe callback can
// send on a closed channel.
func (s *MQTTSink) Close() {
	topic := fmt.Sprintf("miqat/%s/permissions", s.deviceID)
	if token := s.client.Unsubscribe(topic); token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("unsubscribe failed")
	}
	s.client.Disconnect(250)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	close(s.permissions)
	log.Info().Msg("MQTT sink disconnected")
}
