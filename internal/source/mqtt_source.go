package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"surgemind-dispatch/internal/config"
	"surgemind-dispatch/internal/models"

	"go.uber.org/zap"
)

// MQTTSource MQTT事件源
// 订阅事件主题，将消息解码为领域事件后送入引擎消费的通道
// 解码失败的消息记录后丢弃，绝不阻塞后续消息
type MQTTSource struct {
	config     *config.Config
	mqttClient *MQTTClient
	events     chan models.RawEvent
	logger     *zap.Logger

	// 保护 closed 与通道关闭：paho 回调可能在 Stop 之后仍被路由到达
	mu     sync.Mutex
	closed bool
}

// NewMQTTSource 创建MQTT事件源
func NewMQTTSource(cfg *config.Config, mqttClient *MQTTClient, logger *zap.Logger) *MQTTSource {
	return &MQTTSource{
		config:     cfg,
		mqttClient: mqttClient,
		events:     make(chan models.RawEvent, 256),
		logger:     logger,
	}
}

// Events 解码后的事件通道
func (s *MQTTSource) Events() <-chan models.RawEvent {
	return s.events
}

// Start 启动事件源
func (s *MQTTSource) Start(ctx context.Context) error {
	if err := s.mqttClient.Subscribe(s.config.MQTT.Topic, s.config.MQTT.QoS, s.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to event topic: %w", err)
	}

	s.logger.Info("MQTT event source started",
		zap.String("topic", s.config.MQTT.Topic),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止事件源
func (s *MQTTSource) Stop(ctx context.Context) error {
	if s.mqttClient != nil {
		if err := s.mqttClient.Unsubscribe(s.config.MQTT.Topic); err != nil {
			s.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	s.logger.Info("MQTT event source stopped")
	return nil
}

// handleMessage 处理MQTT消息
func (s *MQTTSource) handleMessage(topic string, payload []byte) error {
	s.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	event, err := decodeEvent(payload)
	if err != nil {
		s.logger.Warn("Discarding undecodable event",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to decode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 取消订阅后 paho 路由中仍可能有在途消息，关闭后到达的丢弃
	if s.closed {
		s.logger.Warn("Event source stopped, dropping late event",
			zap.String("kind", string(event.Kind)),
		)
		return nil
	}

	select {
	case s.events <- *event:
	default:
		// 通道满说明引擎处理不过来，丢弃并告警比阻塞订阅回调更安全
		s.logger.Warn("Event channel full, dropping event",
			zap.String("kind", string(event.Kind)),
		)
	}

	return nil
}

// decodeEvent 将消息负载解码为领域事件
// 负载结构必须与 Kind 匹配；OccurredAt 缺失时补当前时间
func decodeEvent(payload []byte) (*models.RawEvent, error) {
	var event models.RawEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	switch event.Kind {
	case models.SourceVitals:
		if event.Vitals == nil {
			return nil, fmt.Errorf("vitals event missing payload")
		}
	case models.SourceCCTVDetection:
		if event.CCTV == nil {
			return nil, fmt.Errorf("cctv event missing payload")
		}
	case models.SourceEmergencyReport:
		if event.Emergency == nil {
			return nil, fmt.Errorf("emergency event missing payload")
		}
	case models.SourceSupplyShortage:
		if event.Supply == nil {
			return nil, fmt.Errorf("supply event missing payload")
		}
	case models.SourceBedTurnover:
		if event.Bed == nil {
			return nil, fmt.Errorf("bed event missing payload")
		}
	default:
		return nil, fmt.Errorf("unknown event kind: %s", event.Kind)
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	return &event, nil
}
