package persist

import (
	"bytes"
	"context"
	"errors"
)

const probeKey = "__storage_probe__"

var probeValue = []byte(`"probe"`)

type Status struct {
	Available     bool   `json:"available"`
	QuotaExceeded bool   `json:"quotaExceeded"`
	Message       string `json:"message"`
}

// Probe writes, reads back and removes a small value to find out whether the
// storage accepts writes. Private-mode and disabled storage report unavailable.
func Probe(ctx context.Context, s Storage) Status {
	if err := s.Set(ctx, probeKey, probeValue); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return Status{
				QuotaExceeded: true,
				Message:       "Storage is full. Changes will only be kept until the session ends.",
			}
		}
		return Status{Message: "Storage is unavailable. Private browsing or disabled storage prevents saving changes."}
	}
	defer s.Remove(ctx, probeKey)

	data, err := s.Get(ctx, probeKey)
	if err != nil || !bytes.Equal(data, probeValue) {
		return Status{Message: "Storage is unavailable. Saved values could not be read back."}
	}

	return Status{Available: true, Message: "Storage is available."}
}
