package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every warehouse topic.
const TopicPrefix = "warehouse"

// Topics builds warehouse MQTT topics.
//
//	mqtt.Topics{}.SensorReading("Sensor:temperature:1a2b3c4d")
//	// warehouse/sensor/Sensor:temperature:1a2b3c4d/reading
type Topics struct{}

// SensorReading is where the simulator publishes each fresh reading.
func (Topics) SensorReading(sensorID string) string {
	return fmt.Sprintf("%s/sensor/%s/reading", TopicPrefix, sensorID)
}

// ZoneInventory carries a zone's inventory level after each walk step.
func (Topics) ZoneInventory(zoneID string) string {
	return fmt.Sprintf("%s/zone/%s/inventory", TopicPrefix, zoneID)
}

// Alert carries alerts raised by the simulator.
func (Topics) Alert(alertID string) string {
	return fmt.Sprintf("%s/alert/%s", TopicPrefix, alertID)
}

// SystemStatus is the retained online/offline topic for a client id.
func (Topics) SystemStatus(clientID string) string {
	return fmt.Sprintf("%s/system/%s/status", TopicPrefix, clientID)
}

// AllSensorReadings matches every sensor reading.
func (Topics) AllSensorReadings() string {
	return TopicPrefix + "/sensor/+/reading"
}

// AllAlerts matches every alert.
func (Topics) AllAlerts() string {
	return TopicPrefix + "/alert/+"
}

// AllTopics matches all warehouse traffic.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// SensorIDFromTopic extracts the sensor id from a reading topic.
func SensorIDFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefix+"/sensor/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/reading")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
