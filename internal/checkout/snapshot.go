package checkout

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the JSON shape persisted per register so a till restart can
// resume its open baskets. History is not part of it; finalized sales live
// in the sales store.
type Snapshot struct {
	RegisterID  string    `json:"register_id"`
	ActiveIndex int       `json:"active_index"`
	Baskets     []Basket  `json:"baskets"`
	SavedAt     time.Time `json:"saved_at"`
}

// Snapshot serializes the session's basket state.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		RegisterID:  s.registerID,
		ActiveIndex: s.baskets.ActiveIndex(),
		SavedAt:     time.Now(),
	}
	for _, b := range s.baskets.Baskets() {
		copied := *b
		copied.Items = CloneItems(b.Items)
		snap.Baskets = append(snap.Baskets, copied)
	}
	return json.Marshal(snap)
}

// RestoreSnapshot replaces the session's baskets from a serialized snapshot.
// Transient state (editor, panels, recall marker) is not restored; it never
// survives a till restart.
func (s *Session) RestoreSnapshot(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding register snapshot: %w", err)
	}
	if len(snap.Baskets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	baskets := make([]*Basket, len(snap.Baskets))
	for i := range snap.Baskets {
		b := snap.Baskets[i]
		baskets[i] = &b
	}
	s.baskets.Restore(baskets, snap.ActiveIndex)
	return nil
}
