// Package dto defines data transfer objects for the Binance REST API responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kline is one row of the /api/v3/klines response:
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
type Kline struct {
	OpenTime int64
	Open     string
	High     string
	Low      string
	Close    string
	Volume   string
}

// UnmarshalJSON decodes the positional array form of a kline.
func (k *Kline) UnmarshalJSON(b []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(b, &row); err != nil {
		return err
	}
	if len(row) < 6 {
		return fmt.Errorf("kline: expected at least 6 fields, got %d", len(row))
	}

	dec := json.NewDecoder(bytes.NewReader(row[0]))
	dec.UseNumber()
	var ot json.Number
	if err := dec.Decode(&ot); err != nil {
		return fmt.Errorf("kline open time: %w", err)
	}
	openTime, err := ot.Int64()
	if err != nil {
		return fmt.Errorf("kline open time %q: %w", ot, err)
	}
	k.OpenTime = openTime

	fields := []*string{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume}
	for i, f := range fields {
		if err := json.Unmarshal(row[i+1], f); err != nil {
			return fmt.Errorf("kline field %d: %w", i+1, err)
		}
	}
	return nil
}

// APIError is the error body Binance returns with 4xx/5xx responses.
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
