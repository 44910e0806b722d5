//go:build integration

package mqtt

import (
	"errors"
	"testing"
	"time"
)

// Requires a broker at 127.0.0.1:1883:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

func TestIntegration_ReadingRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "warehouse-int-roundtrip"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan SensorReading, 1)
	if err := client.SubscribeReadings(func(r SensorReading) { received <- r }); err != nil {
		t.Fatalf("SubscribeReadings() error = %v", err)
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	want := SensorReading{SensorID: "Sensor:weight:int00001", Attribute: "weight", Value: 412, Timestamp: time.Now().UTC()}
	if err := client.PublishReading(want); err != nil {
		t.Fatalf("PublishReading() error = %v", err)
	}

	select {
	case got := <-received:
		if got.SensorID != want.SensorID || got.Value != want.Value {
			t.Errorf("received %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reading not received")
	}

	if err := client.Unsubscribe(Topics{}.AllSensorReadings()); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
