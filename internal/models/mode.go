package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown detection mode")

// Mode selects which predictors a pipeline run invokes.
type Mode string

const (
	ModeSigns    Mode = "signs"
	ModePotholes Mode = "potholes"
	ModeBoth     Mode = "both"
)

// ParseMode accepts the canonical names plus the aliases used by the web client.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signs", "traffic", "a":
		return ModeSigns, nil
	case "potholes", "pothole", "b":
		return ModePotholes, nil
	case "both", "a+b":
		return ModeBoth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) Valid() bool {
	return m == ModeSigns || m == ModePotholes || m == ModeBoth
}

// UsesSigns reports whether the sign predictor runs in this mode.
func (m Mode) UsesSigns() bool {
	return m == ModeSigns || m == ModeBoth
}

// UsesPotholes reports whether the pothole predictor runs in this mode.
func (m Mode) UsesPotholes() bool {
	return m == ModePotholes || m == ModeBoth
}

// RunState is the lifecycle of a pipeline run.
type RunState int32

const (
	StateStopped RunState = iota
	StateRunning
)

func (s RunState) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
