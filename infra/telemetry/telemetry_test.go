package telemetry

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/sim"
)

func sampleDay() sim.DayCompleted {
	return sim.DayCompleted{
		RunID: "run-1",
		Day: model.DailyItinerary{
			DayIndex:             1,
			Date:                 time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
			TotalDistanceKm:      240,
			EndKm:                240,
			EndBatteryPct:        62,
			EnergyProductionKWh:  3.5,
			EnergyConsumptionKWh: 12,
			TotalChargingHours:   1,
		},
		RemainingKm: 760,
	}
}

func TestMockPublisherRecords(t *testing.T) {
	m := NewMockPublisher()
	if err := m.PublishDay(sampleDay()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.RunID != "run-1" || got.DayIndex != 1 {
		t.Fatalf("unexpected message %+v", got)
	}
	if got.Date != "2026-10-18" {
		t.Fatalf("unexpected date %q", got.Date)
	}
	if got.RemainingKm != 760 {
		t.Fatalf("unexpected remaining %v", got.RemainingKm)
	}
}

func TestMockPublisherError(t *testing.T) {
	m := NewMockPublisher()
	m.Err = errors.New("broker down")
	if err := m.PublishDay(sampleDay()); err == nil {
		t.Fatal("expected error")
	}
	if len(m.Messages()) != 0 {
		t.Fatal("failed publish must not be recorded")
	}
}

func TestDayTopic(t *testing.T) {
	if got := DayTopic("abc"); got != "solarace/run/abc/day" {
		t.Fatalf("unexpected topic %q", got)
	}
}

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	topics   []string
	payloads [][]byte
	tok      *fakeToken
}

func (f *fakeClient) IsConnected() bool   { return true }
func (f *fakeClient) Connect() paho.Token { return &fakeToken{} }
func (f *fakeClient) Disconnect(uint)     {}
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return f.tok
}

func TestPahoPublisherTopicAndPayload(t *testing.T) {
	fc := &fakeClient{tok: &fakeToken{}}
	p := &PahoPublisher{cli: fc, qos: 0}
	if err := p.PublishDay(sampleDay()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fc.topics) != 1 || fc.topics[0] != "solarace/run/run-1/day" {
		t.Fatalf("unexpected topics %v", fc.topics)
	}
}

func TestPahoPublisherErrors(t *testing.T) {
	fc := &fakeClient{tok: &fakeToken{err: errors.New("boom")}}
	p := &PahoPublisher{cli: fc, qos: 0}
	if err := p.PublishDay(sampleDay()); err == nil {
		t.Fatal("expected publish error")
	}

	fc = &fakeClient{tok: &fakeToken{timeout: true}}
	p = &PahoPublisher{cli: fc, qos: 0}
	if err := p.PublishDay(sampleDay()); err == nil {
		t.Fatal("expected timeout error")
	}
}
