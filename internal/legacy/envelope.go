// Package legacy talks to the old portal backend during the migration window.
// Its responses are loosely shaped: the same endpoint may answer with a bare
// array, an array wrapped in a data envelope, or a doubly wrapped envelope.
// Everything is normalised here at the boundary so the rest of the code never
// sees the variance.
package legacy

import (
	"encoding/json"
	"fmt"
)

// Entry is a normalised legacy entry record. Day is the 1-5 weekday ordinal
// the legacy backend uses.
type Entry struct {
	ID     string `json:"id"`
	Week   int    `json:"week"`
	Day    int    `json:"day"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// Logbook is the normalised legacy logbook metadata.
type Logbook struct {
	ID     string `json:"id"`
	Size   int    `json:"size"`
	Status string `json:"status"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap peels data envelopes until the payload is no longer an object with a
// data field. Depth is capped so malformed payloads cannot recurse forever.
func unwrap(raw json.RawMessage) (json.RawMessage, error) {
	for depth := 0; depth < 3; depth++ {
		trimmed := trimSpace(raw)
		if len(trimmed) == 0 {
			return nil, fmt.Errorf("empty payload")
		}
		if trimmed[0] != '{' {
			return trimmed, nil
		}
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Data == nil {
			// An object without a data field is the payload itself.
			return trimmed, nil
		}
		raw = env.Data
	}
	return nil, fmt.Errorf("envelope nested deeper than supported")
}

// DecodeEntryList normalises any supported envelope shape into a slice of
// legacy entries: [...], {"data":[...]} and {"data":{"data":[...]}} all parse.
func DecodeEntryList(raw []byte) ([]Entry, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if payload[0] != '[' {
		return nil, fmt.Errorf("entry list payload is not an array")
	}
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode entry list: %w", err)
	}
	return entries, nil
}

// DecodeLogbook normalises a logbook metadata response.
func DecodeLogbook(raw []byte) (*Logbook, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if payload[0] != '{' {
		return nil, fmt.Errorf("logbook payload is not an object")
	}
	var book Logbook
	if err := json.Unmarshal(payload, &book); err != nil {
		return nil, fmt.Errorf("decode logbook: %w", err)
	}
	return &book, nil
}

func decodeArray(payload []byte, dest interface{}) error {
	if len(payload) == 0 || payload[0] != '[' {
		return fmt.Errorf("payload is not an array")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode array: %w", err)
	}
	return nil
}

func trimSpace(raw []byte) []byte {
	start := 0
	for start < len(raw) && isSpace(raw[start]) {
		start++
	}
	end := len(raw)
	for end > start && isSpace(raw[end-1]) {
		end--
	}
	return raw[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
