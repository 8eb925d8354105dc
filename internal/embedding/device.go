package embedding

import (
	"fmt"
	"strconv"
	"strings"
)

// Device is a parsed execution device hint.
type Device struct {
	CUDA bool
	ID   int
}

func (d Device) String() string {
	if !d.CUDA {
		return "cpu"
	}
	return "cuda:" + strconv.Itoa(d.ID)
}

// ParseDevice parses "cpu", "cuda" or "cuda:N". An empty hint means cpu.
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "cpu":
		return Device{}, nil
	case s == "cuda" || s == "gpu":
		return Device{CUDA: true}, nil
	case strings.HasPrefix(s, "cuda:"):
		id, err := strconv.Atoi(strings.TrimPrefix(s, "cuda:"))
		if err != nil || id < 0 {
			return Device{}, fmt.Errorf("invalid device %q: want cuda:N with N >= 0", s)
		}
		return Device{CUDA: true, ID: id}, nil
	default:
		return Device{}, fmt.Errorf("unsupported device %q (supported: cpu, cuda, cuda:N)", s)
	}
}
