// Package moku is a small client for the Moku instrument REST API.
//
// Every response from the instrument is wrapped in an envelope of the form
// {"success": bool, "code": string, "messages": [string], "data": any}.
// The client unwraps it and returns either the raw data payload or a typed
// error: *TransportError when the request never completed, *StatusError for a
// non-2xx reply and *APIError when the envelope reports success=false.
//
// Ownership must be claimed before the instrument accepts commands:
//
//	c := moku.NewClient("192.168.73.1")
//	if _, err := c.Claim(ctx, true); err != nil {
//		return err
//	}
//	defer c.Relinquish(context.Background())
//
//	osc := c.Oscilloscope("slot1")
//	frame, err := osc.GetData(ctx, moku.GetDataRequest{WaitReacquire: true})
//
// A Client holds a single session credential and is meant for sequential use.
package moku
