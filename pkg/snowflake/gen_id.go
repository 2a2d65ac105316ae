package snowflake

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sony/sonyflake"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator hands out time-ordered ids unique per machine id.
type Generator struct {
	node *sonyflake.Sonyflake
}

// NewGenerator creates and returns a new Generator.
func NewGenerator(machineID uint16) (*Generator, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: epoch,
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create sonyflake: %w", err)
	}
	return &Generator{node: sf}, nil
}

// NextID generates a new unique id.
func (g *Generator) NextID() (uint64, error) {
	return g.node.NextID()
}

// NextString returns the next id in base 36.
func (g *Generator) NextString() (string, error) {
	id, err := g.node.NextID()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 36), nil
}
