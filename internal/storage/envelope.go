// internal/storage/envelope.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	stderrors "delivery-engine/internal/common/errors"
)

// envelopeVersion is written with every value. There is no migration layer;
// the version exists so a future one has something to dispatch on.
const envelopeVersion = 1

// Envelope wraps a persisted store slice with bookkeeping fields.
type Envelope struct {
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     json.RawMessage `json:"state"`
}

// SaveJSON serializes state into an envelope and writes it under key.
func SaveJSON(ctx context.Context, kv KV, key string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return stderrors.NewStorageWriteFailedError(key, err)
	}

	env := Envelope{
		Version:   envelopeVersion,
		UpdatedAt: time.Now().UTC(),
		State:     raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return stderrors.NewStorageWriteFailedError(key, err)
	}

	if err := kv.Set(ctx, key, data); err != nil {
		return stderrors.NewStorageWriteFailedError(key, err)
	}
	return nil
}

// LoadJSON reads the envelope under key and decodes its state into out.
// A missing key is not an error: it returns (false, nil) and leaves out
// untouched. A present but undecodable value surfaces as STATE_DECODE_FAILED.
func LoadJSON(ctx context.Context, kv KV, key string, out interface{}) (bool, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, stderrors.NewStorageReadFailedError(key, err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, stderrors.NewStateDecodeFailedError(key, err)
	}
	if err := json.Unmarshal(env.State, out); err != nil {
		return false, stderrors.NewStateDecodeFailedError(key, err)
	}
	return true, nil
}
