package moku

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestSetFrontendSendsSettings(t *testing.T) {
	dev, srv := newStubDevice(t, map[string]string{
		"/api/slot1/oscilloscope/set_frontend": `{"success": true, "data": {"coupling": "DC", "impedance": "1MOhm", "range": "10Vpp"}}`,
	})
	c := NewClient(hostOf(srv))

	got, err := c.Oscilloscope("slot1").SetFrontend(context.Background(), FrontendRequest{
		Channel: 1, Coupling: "DC", Impedance: "1MOhm", Range: "10Vpp",
	})
	if err != nil {
		t.Fatalf("SetFrontend: %v", err)
	}
	if got.Range != "10Vpp" || got.Coupling != "DC" || got.Impedance != "1MOhm" {
		t.Fatalf("unexpected settings %+v", got)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(dev.calls()[0].Body), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent["channel"] != float64(1) || sent["coupling"] != "DC" || sent["impedance"] != "1MOhm" || sent["range"] != "10Vpp" {
		t.Fatalf("unexpected request body %v", sent)
	}
}

func TestSetFrontendReportsAPIError(t *testing.T) {
	_, srv := newStubDevice(t, map[string]string{
		"/api/slot1/oscilloscope/set_frontend": `{"success": false, "code": "E_BAD_RANGE", "messages": ["range not supported"]}`,
	})
	c := NewClient(hostOf(srv))

	_, err := c.Oscilloscope("slot1").SetFrontend(context.Background(), FrontendRequest{Channel: 1, Range: "100Vpp"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "E_BAD_RANGE" || len(apiErr.Messages) != 1 || apiErr.Messages[0] != "range not supported" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestGetDataDecodesFrame(t *testing.T) {
	dev, srv := newStubDevice(t, map[string]string{
		"/api/slot1/oscilloscope/get_data": `{"success": true, "data": {"time": [-0.001, 0, 0.001], "ch1": [0.1, 0.2, 0.3], "ch2": [1, 1, 1]}}`,
	})
	c := NewClient(hostOf(srv))

	frame, err := c.Oscilloscope("slot1").GetData(context.Background(), GetDataRequest{WaitReacquire: true})
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if len(frame.Time) != 3 || len(frame.Ch1) != 3 || frame.Ch1[2] != 0.3 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	channels := frame.Channels()
	if len(channels) != 2 {
		t.Fatalf("expected 2 populated channels, got %d", len(channels))
	}
	if dev.calls()[0].Body != `{"wait_reacquire":true}` {
		t.Fatalf("unexpected request body %q", dev.calls()[0].Body)
	}
}

func TestOscilloscopeWithoutSlotUsesBarePath(t *testing.T) {
	dev, srv := newStubDevice(t, map[string]string{
		"/api/oscilloscope/set_timebase": `{"success": true, "data": {"t1": -0.001, "t2": 0.001}}`,
	})
	c := NewClient(hostOf(srv))

	tb, err := c.Oscilloscope("").SetTimebase(context.Background(), -1e-3, 1e-3)
	if err != nil {
		t.Fatalf("SetTimebase: %v", err)
	}
	if tb.T1 != -1e-3 || tb.T2 != 1e-3 {
		t.Fatalf("unexpected timebase %+v", tb)
	}
	if dev.calls()[0].Path != "/api/oscilloscope/set_timebase" {
		t.Fatalf("unexpected path %q", dev.calls()[0].Path)
	}
}
