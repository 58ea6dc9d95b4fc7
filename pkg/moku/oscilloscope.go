package moku

import (
	"context"
	"encoding/json"
	"fmt"
)

// FrontendRequest configures the analog frontend of one input channel.
type FrontendRequest struct {
	Channel   int    `json:"channel"`
	Coupling  string `json:"coupling"`
	Impedance string `json:"impedance"`
	Range     string `json:"range"`
}

// FrontendSettings is the frontend state the device applied.
type FrontendSettings struct {
	Coupling  string `json:"coupling,omitempty"`
	Impedance string `json:"impedance,omitempty"`
	Range     string `json:"range,omitempty"`
}

// TimebaseRequest sets the acquisition span relative to the trigger point, in seconds.
type TimebaseRequest struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
}

// Timebase is the span the device applied.
type Timebase struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
}

// GetDataRequest controls frame retrieval.
type GetDataRequest struct {
	WaitReacquire bool `json:"wait_reacquire"`
}

// Frame is one acquisition: a shared time axis and a voltage series per channel.
type Frame struct {
	Time []float64 `json:"time"`
	Ch1  []float64 `json:"ch1,omitempty"`
	Ch2  []float64 `json:"ch2,omitempty"`
	Ch3  []float64 `json:"ch3,omitempty"`
	Ch4  []float64 `json:"ch4,omitempty"`
}

// Channels returns the populated channel series keyed by name (ch1..ch4).
func (f Frame) Channels() map[string][]float64 {
	out := make(map[string][]float64, 4)
	for name, series := range map[string][]float64{
		"ch1": f.Ch1,
		"ch2": f.Ch2,
		"ch3": f.Ch3,
		"ch4": f.Ch4,
	} {
		if len(series) > 0 {
			out[name] = series
		}
	}
	return out
}

// Oscilloscope addresses the oscilloscope instrument deployed in a slot.
// The first call to any of its resources deploys the instrument.
type Oscilloscope struct {
	client *Client
	slot   string
}

// Oscilloscope returns a handle for the oscilloscope in slot (e.g. "slot1").
// An empty slot addresses the single-instrument path.
func (c *Client) Oscilloscope(slot string) *Oscilloscope {
	return &Oscilloscope{client: c, slot: slot}
}

// Slot returns the slot this handle addresses.
func (o *Oscilloscope) Slot() string { return o.slot }

func (o *Oscilloscope) url(op string) string {
	if o.slot == "" {
		return o.client.BuildURL("oscilloscope/" + op)
	}
	return o.client.BuildURL(o.slot + "/oscilloscope/" + op)
}

// SetFrontend applies channel coupling, impedance and range.
func (o *Oscilloscope) SetFrontend(ctx context.Context, req FrontendRequest) (FrontendSettings, error) {
	var out FrontendSettings
	if err := o.call(ctx, "set_frontend", req, &out); err != nil {
		return FrontendSettings{}, err
	}
	return out, nil
}

// SetTimebase sets the span from t1 to t2 seconds around the trigger.
func (o *Oscilloscope) SetTimebase(ctx context.Context, t1, t2 float64) (Timebase, error) {
	var out Timebase
	if err := o.call(ctx, "set_timebase", TimebaseRequest{T1: t1, T2: t2}, &out); err != nil {
		return Timebase{}, err
	}
	return out, nil
}

// GetData retrieves one frame of waveform data.
func (o *Oscilloscope) GetData(ctx context.Context, req GetDataRequest) (*Frame, error) {
	var frame Frame
	if err := o.call(ctx, "get_data", req, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

func (o *Oscilloscope) call(ctx context.Context, op string, body, out any) error {
	data, err := o.client.Post(ctx, o.url(op), body)
	if err != nil {
		return fmt.Errorf("oscilloscope %s: %w", op, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("oscilloscope %s: decode response: %w", op, err)
	}
	return nil
}
