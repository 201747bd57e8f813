package envelope

import (
	"testing"
	"time"
)

func TestIsRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"object", `{"event":"run.started"}`, true},
		{"empty object", `{}`, true},
		{"array", `[1,2]`, false},
		{"string", `"hello"`, false},
		{"number", `42`, false},
		{"null", `null`, false},
		{"invalid", `{"event":`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecord([]byte(tt.raw)); got != tt.want {
				t.Fatalf("IsRecord(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_WireVersionsAreEquivalent(t *testing.T) {
	flat := []byte(`{"type":"run.started","created_at":"2026-03-01T10:00:00Z","mode":"execute","env":{"reused":true},"run_id":"run_1"}`)
	enveloped := []byte(`{"event":"run.started","timestamp":"2026-03-01T10:00:00Z","run_id":"run_1","data":{"mode":"execute","env":{"reused":true}}}`)

	a, ok := Decode(flat)
	if !ok {
		t.Fatal("flat event should decode")
	}
	b, ok := Decode(enveloped)
	if !ok {
		t.Fatal("enveloped event should decode")
	}

	if a.Version() != VersionFlat || b.Version() != VersionEnveloped {
		t.Fatalf("versions = %v, %v", a.Version(), b.Version())
	}
	if a.Name() != b.Name() || a.Name() != "run.started" {
		t.Fatalf("names = %q, %q", a.Name(), b.Name())
	}
	if a.Payload().String("mode") != "execute" || b.Payload().String("mode") != "execute" {
		t.Fatal("mode should be readable from both payloads")
	}
	ra, _ := a.Payload().Bool("env.reused")
	rb, _ := b.Payload().Bool("env.reused")
	if !ra || !rb {
		t.Fatal("env.reused should be true in both payloads")
	}
	if a.RunID() != "run_1" || b.RunID() != "run_1" {
		t.Fatalf("run ids = %q, %q", a.RunID(), b.RunID())
	}
	ta, okA := a.Timestamp()
	tb, okB := b.Timestamp()
	if !okA || !okB || !ta.Equal(tb) {
		t.Fatalf("timestamps = %v/%v, %v/%v", ta, okA, tb, okB)
	}
	if a.Payload().Exists("type") || a.Payload().Exists("created_at") {
		t.Fatal("flat payload should not carry envelope keys")
	}
}

func TestDecode_FlatWithNestedPayload(t *testing.T) {
	ev, ok := Decode([]byte(`{"type":"build.queued","payload":{"reason":"dependency change"}}`))
	if !ok {
		t.Fatal("expected decode")
	}
	if got := ev.Payload().String("reason"); got != "dependency change" {
		t.Fatalf("reason = %q", got)
	}
}

func TestDecode_NameAlias(t *testing.T) {
	ev, ok := Decode([]byte(`{"name":"build.complete","payload":{"status":"ready"}}`))
	if !ok {
		t.Fatal("expected decode")
	}
	if ev.Name() != "build.complete" || ev.Version() != VersionEnveloped {
		t.Fatalf("got name %q version %v", ev.Name(), ev.Version())
	}
	if ev.Payload().String("status") != "ready" {
		t.Fatal("payload should come from the payload key")
	}
}

func TestDecode_MissingPayloadIsEmptyObject(t *testing.T) {
	ev, ok := Decode([]byte(`{"event":"run.queued"}`))
	if !ok {
		t.Fatal("expected decode")
	}
	if got := ev.Payload().Raw(); got != "{}" {
		t.Fatalf("payload = %q, want {}", got)
	}
}

func TestDecode_NotARecord(t *testing.T) {
	if _, ok := Decode([]byte(`[1,2,3]`)); ok {
		t.Fatal("array should not decode")
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"rfc3339", `{"event":"x","timestamp":"2026-03-01T10:00:00Z"}`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"fractional with zone", `{"event":"x","timestamp":"2026-03-01T12:00:00.5+02:00"}`, time.Date(2026, 3, 1, 10, 0, 0, 5e8, time.UTC), true},
		{"no zone", `{"event":"x","timestamp":"2026-03-01 10:00:00"}`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"epoch seconds", `{"type":"x","created_at":1772359200}`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"epoch millis", `{"type":"x","created_at":1772359200000}`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"garbage", `{"event":"x","timestamp":"yesterday"}`, time.Time{}, false},
		{"absent", `{"event":"x"}`, time.Time{}, false},
		{"null", `{"event":"x","timestamp":null}`, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, _ := Decode([]byte(tt.raw))
			got, ok := ev.Timestamp()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("timestamp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	if got := Stringify([]byte("{ \"event\" : \"a b\",\n \"data\": {} }")); got != `{"event":"a b","data":{}}` {
		t.Fatalf("Stringify = %q", got)
	}
	if got := Stringify([]byte("not json ")); got != "not json" {
		t.Fatalf("Stringify(non-json) = %q", got)
	}
}

func TestDecode_FlatEventWithNameField(t *testing.T) {
	ev, ok := Decode([]byte(`{"type":"engine.sheet.start","name":"Sheet1"}`))
	if !ok {
		t.Fatal("expected decode")
	}
	if ev.Name() != "engine.sheet.start" || ev.Version() != VersionFlat {
		t.Fatalf("got name %q version %v", ev.Name(), ev.Version())
	}
	if ev.Payload().String("name") != "Sheet1" {
		t.Fatal("name should stay in the flat payload")
	}
}
