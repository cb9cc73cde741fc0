package snapshot

import (
	"fmt"
)

type mockSnapshot struct {
	hd     Header
	x      [][3]float64
	fields map[Key][]float64
	closed bool
}

// NewMockSnapshot creates an in-memory snapshot. hd.NGas is set from len(x),
// and every field must have the same length as x.
func NewMockSnapshot(
	hd *Header, x [][3]float64, fields map[Key][]float64,
) (Snapshot, error) {
	snap := &mockSnapshot{ hd: *hd, x: x, fields: map[Key][]float64{} }
	snap.hd.NGas = int64(len(x))

	for key, data := range fields {
		if err := checkLength(&snap.hd, key, len(data)); err != nil {
			return nil, err
		}
		snap.fields[key] = data
	}

	return snap, nil
}

func (snap *mockSnapshot) Header() *Header { return &snap.hd }

func (snap *mockSnapshot) Positions() ([][3]float64, error) {
	if snap.closed { return nil, fmt.Errorf("snapshot is closed") }
	return snap.x, nil
}

func (snap *mockSnapshot) Field(key Key) ([]float64, error) {
	if snap.closed { return nil, fmt.Errorf("snapshot is closed") }
	data, ok := snap.fields[key]
	if !ok { return nil, fmt.Errorf("%w: %s", ErrNoField, key) }
	return data, nil
}

func (snap *mockSnapshot) Close() error {
	snap.closed = true
	return nil
}
