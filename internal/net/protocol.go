package net

import (
	"encoding/json"
	"fmt"

	"github.com/Timmith/ld49/internal/core/ecs"
	"github.com/Timmith/ld49/internal/scene"
)

// Command types sent by clients. Coordinates are in simulation space.
const (
	CmdCursorStart = "cursorStart"
	CmdCursorMove  = "cursorMove"
	CmdCursorStop  = "cursorStop"
	CmdSkip        = "skip"
	CmdWheel       = "wheel"
	CmdSave        = "save"
	CmdLoad        = "load"
)

// Command is one inbound client message.
type Command struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Delta float64 `json:"delta,omitempty"`
}

// DecodeCommand parses and checks a client message.
func DecodeCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CmdCursorStart, CmdCursorMove, CmdCursorStop, CmdSkip, CmdWheel, CmdSave, CmdLoad:
		return c, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", c.Type)
}

// Event is a HUD notification inside a frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Frame is the per-tick message sent to every client.
type Frame struct {
	Tick     uint64         `json:"tick"`
	State    string         `json:"state"`
	Level    int            `json:"level"`
	Health   int            `json:"health"`
	Timer    float64        `json:"timer"`
	MaxTimer float64        `json:"maxTimer"`
	Height   float64        `json:"height"`
	Nodes    []scene.Node   `json:"nodes,omitempty"`
	Removed  []ecs.EntityID `json:"removed,omitempty"`
	Events   []Event        `json:"events,omitempty"`
}

// EncodeFrame serializes f.
func EncodeFrame(f *Frame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}
