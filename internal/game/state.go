package game

import (
	"encoding/json"
	"fmt"
)

// State is a round state.
type State int

const (
	Uninitialized State = iota
	WaitingForInput
	Playing
	Settling
	Checking
	Transitioning
	GameOver
)

var stateNames = [...]string{
	Uninitialized:   "uninitialized",
	WaitingForInput: "waitingForInput",
	Playing:         "playing",
	Settling:        "settling",
	Checking:        "checking",
	Transitioning:   "transitioning",
	GameOver:        "gameOver",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Uninitialized, fmt.Errorf("unknown round state %q", name)
}

// Snapshots carry the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	st, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
