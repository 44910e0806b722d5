package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// SensorReading is the payload published on Topics.SensorReading.
type SensorReading struct {
	SensorID     string    `json:"sensor_id"`
	SensorType   string    `json:"sensor_type"`
	Location     string    `json:"location"`
	Attribute    string    `json:"attribute"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit,omitempty"`
	BatteryLevel float64   `json:"battery_level"`
	Timestamp    time.Time `json:"timestamp"`
}

// ZoneInventory is the payload published on Topics.ZoneInventory.
type ZoneInventory struct {
	ZoneID           string    `json:"zone_id"`
	Name             string    `json:"name"`
	Capacity         int       `json:"capacity"`
	CurrentInventory int       `json:"current_inventory"`
	Timestamp        time.Time `json:"timestamp"`
}

// AlertRaised is the payload published on Topics.Alert.
type AlertRaised struct {
	AlertID   string    `json:"alert_id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Zone      string    `json:"zone"`
	Timestamp time.Time `json:"timestamp"`
}

// statusMessage is the retained presence payload, also used as the will.
type statusMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ParseSensorReading decodes a reading payload and checks the sensor id.
func ParseSensorReading(payload []byte) (SensorReading, error) {
	var r SensorReading
	if err := json.Unmarshal(payload, &r); err != nil {
		return SensorReading{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if r.SensorID == "" {
		return SensorReading{}, fmt.Errorf("%w: missing sensor_id", ErrInvalidMessage)
	}
	return r, nil
}

func statusPayload(status, clientID, reason string) []byte {
	b, _ := json.Marshal(statusMessage{ //nolint:errcheck // fixed struct of strings
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}
