package source

import (
	"context"
	"testing"
	"time"

	"surgemind-dispatch/internal/config"
	"surgemind-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeEvent_Vitals(t *testing.T) {
	payload := []byte(`{
		"kind": "Vitals",
		"occurred_at": "2026-03-14T10:30:00Z",
		"vitals": {
			"device_id": "dev-7",
			"patient_id": "P1",
			"location": "ICU",
			"spo2": 87
		}
	}`)

	event, err := decodeEvent(payload)

	require.NoError(t, err)
	assert.Equal(t, models.SourceVitals, event.Kind)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC), event.OccurredAt)
	require.NotNil(t, event.Vitals)
	assert.Equal(t, "ICU", event.Vitals.Location)
	require.NotNil(t, event.Vitals.SpO2)
	assert.Equal(t, 87, *event.Vitals.SpO2)
	assert.Nil(t, event.Vitals.HeartRate)
}

func TestDecodeEvent_AllKinds(t *testing.T) {
	payloads := map[models.SourceKind][]byte{
		models.SourceCCTVDetection:   []byte(`{"kind":"CCTVDetection","cctv":{"camera_id":"CAM-2","location":"Hallway","detection_type":"Fall Detected","confidence":0.95}}`),
		models.SourceEmergencyReport: []byte(`{"kind":"EmergencyReport","emergency":{"emergency_type":"Code Blue","location":"ER"}}`),
		models.SourceSupplyShortage:  []byte(`{"kind":"SupplyShortage","supply":{"item_name":"Gloves","location":"Storage","quantity":5,"threshold":20}}`),
		models.SourceBedTurnover:     []byte(`{"kind":"BedTurnover","bed":{"bed_number":"B-12","ward":"Ward-3","status":"Cleaning","cleaning_cycles":2}}`),
	}

	for kind, payload := range payloads {
		event, err := decodeEvent(payload)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, event.Kind)
	}
}

func TestDecodeEvent_MissingOccurredAtDefaultsToNow(t *testing.T) {
	payload := []byte(`{"kind":"EmergencyReport","emergency":{"emergency_type":"Fire","location":"Ward-1"}}`)

	before := time.Now()
	event, err := decodeEvent(payload)

	require.NoError(t, err)
	assert.False(t, event.OccurredAt.Before(before))
}

func TestDecodeEvent_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte(`not json at all`)},
		{"unknown kind", []byte(`{"kind":"Telepathy"}`)},
		{"kind payload mismatch", []byte(`{"kind":"Vitals","cctv":{"camera_id":"CAM-1"}}`)},
		{"missing payload", []byte(`{"kind":"SupplyShortage"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decodeEvent(tt.payload)
			assert.Error(t, err)
			assert.Nil(t, event)
		})
	}
}

func TestHandleMessage_DeliversToChannel(t *testing.T) {
	cfg := &config.Config{}
	s := NewMQTTSource(cfg, nil, zap.NewNop())

	payload := []byte(`{"kind":"EmergencyReport","emergency":{"emergency_type":"Code Blue","location":"ER"}}`)
	require.NoError(t, s.handleMessage("surgemind/events/emergency", payload))

	select {
	case event := <-s.Events():
		assert.Equal(t, models.SourceEmergencyReport, event.Kind)
	default:
		t.Fatal("expected event on channel")
	}
}

func TestHandleMessage_AfterStopDroppedWithoutPanic(t *testing.T) {
	cfg := &config.Config{}
	s := NewMQTTSource(cfg, nil, zap.NewNop())

	payload := []byte(`{"kind":"EmergencyReport","emergency":{"emergency_type":"Code Blue","location":"ER"}}`)
	require.NoError(t, s.handleMessage("surgemind/events/emergency", payload))
	require.NoError(t, s.Stop(context.Background()))

	// 停止后到达的在途消息被丢弃，不能击穿进程
	require.NotPanics(t, func() {
		assert.NoError(t, s.handleMessage("surgemind/events/emergency", payload))
	})

	// 停止前入队的事件仍可取出，随后通道正常关闭
	event, ok := <-s.Events()
	require.True(t, ok)
	assert.Equal(t, models.SourceEmergencyReport, event.Kind)

	_, ok = <-s.Events()
	assert.False(t, ok)
}

func TestStop_Idempotent(t *testing.T) {
	cfg := &config.Config{}
	s := NewMQTTSource(cfg, nil, zap.NewNop())

	require.NoError(t, s.Stop(context.Background()))
	require.NotPanics(t, func() {
		assert.NoError(t, s.Stop(context.Background()))
	})
}

func TestHandleMessage_UndecodableDiscarded(t *testing.T) {
	cfg := &config.Config{}
	s := NewMQTTSource(cfg, nil, zap.NewNop())

	err := s.handleMessage("surgemind/events/garbage", []byte(`{{{`))

	assert.Error(t, err)
	assert.Empty(t, s.Events())
}
