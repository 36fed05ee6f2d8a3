package endpoint

import "fmt"

// VolumeNode is a volume control point inside a device topology. It owns
// only its level handle and stays usable after the parent Device is closed.
type VolumeNode struct {
	level VolumeLevel
	name  string
}

func newVolumeNode(level VolumeLevel, name string) (*VolumeNode, error) {
	if level == nil {
		return nil, ErrNoVolumeInterface
	}
	return &VolumeNode{level: level, name: name}, nil
}

// Name returns the topology part name
func (n *VolumeNode) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// Close releases the level handle. Closing twice is a no-op.
func (n *VolumeNode) Close() error {
	if n == nil || n.level == nil {
		return nil
	}
	n.level.Release()
	n.level = nil
	return nil
}

// Channels returns the channel count of the node
func (n *VolumeNode) Channels() (int, error) {
	if n == nil || n.level == nil {
		return 0, ErrInvalidDevice
	}
	count, err := n.level.ChannelCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrChannelQueryFailed, err)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: node reports %d channels", ErrChannelQueryFailed, count)
	}
	return count, nil
}

// Level returns the scalar level of one channel, or with AllChannels the
// scalar of the mean decibel level across channels. Averaging happens in the
// decibel domain.
func (n *VolumeNode) Level(channel int) (float64, error) {
	if n == nil || n.level == nil {
		return 0, ErrInvalidDevice
	}

	if channel != AllChannels {
		db, err := n.level.Level(channel)
		if err != nil {
			return 0, fmt.Errorf("%w: channel %d: %w", ErrLevelUnavailable, channel, err)
		}
		return DBToScalar(float64(db)), nil
	}

	count, err := n.Channels()
	if err != nil {
		return 0, err
	}

	var sum float64
	for ch := 0; ch < count; ch++ {
		db, err := n.level.Level(ch)
		if err != nil {
			return 0, fmt.Errorf("%w: channel %d: %w", ErrLevelUnavailable, ch, err)
		}
		sum += float64(db)
	}

	return DBToScalar(sum / float64(count)), nil
}

// SetLevel converts v to decibels and writes it to one channel, or to every
// channel with AllChannels. v is not range checked.
func (n *VolumeNode) SetLevel(v float64, channel int) error {
	if n == nil || n.level == nil {
		return ErrInvalidDevice
	}

	db := float32(ScalarToDB(v))

	if channel != AllChannels {
		if err := n.level.SetLevel(channel, db); err != nil {
			return fmt.Errorf("%w: channel %d: %w", ErrLevelUnavailable, channel, err)
		}
		return nil
	}

	count, err := n.Channels()
	if err != nil {
		return err
	}
	for ch := 0; ch < count; ch++ {
		if err := n.level.SetLevel(ch, db); err != nil {
			return fmt.Errorf("%w: channel %d: %w", ErrLevelUnavailable, ch, err)
		}
	}
	return nil
}
