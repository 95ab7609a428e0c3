package cart

import (
	"encoding/json"
	"fmt"
)

// encodeSnapshot serializes the snapshot as a JSON array. An empty cart is
// written as [] rather than null.
func encodeSnapshot(snapshot Snapshot) (string, error) {
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot parses a persisted snapshot and restores the cart
// invariants: one entry per key (later duplicates fold into the first),
// quantities between 1 and MaxQuantity, and no empty variant keys.
func decodeSnapshot(raw string) (Snapshot, error) {
	var stored []LineItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}

	snapshot := make(Snapshot, 0, len(stored))
	for _, item := range stored {
		if item.VariantKey == "" {
			item.VariantKey = DefaultVariant
		}
		item.Quantity = clampQuantity(item.Quantity)

		if idx := snapshot.Find(item.Key()); idx >= 0 {
			// both operands are at most MaxQuantity, so the sum cannot overflow
			snapshot[idx].Quantity = clampQuantity(snapshot[idx].Quantity + item.Quantity)
			continue
		}
		snapshot = append(snapshot, item)
	}

	return snapshot, nil
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}
