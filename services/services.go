package services

import (
	"sync/atomic"

	"github.com/sulefrederickjohne/pfememory/config"
	"github.com/sulefrederickjohne/pfememory/logzer"
	"github.com/sulefrederickjohne/pfememory/transit"
)

// Status describes the state of a service component
type Status string

// Status values
const (
	StatusProcessing Status = "processing"
	StatusRunning    Status = "running"
	StatusStopped    Status = "stopped"
	StatusDisabled   Status = "disabled"
)

// StatusValue holds Status safe for concurrent use
type StatusValue struct {
	v atomic.Value
}

// Set stores the status
func (s *StatusValue) Set(status Status) {
	s.v.Store(status)
}

// Value returns the status, StatusStopped if never set
func (s *StatusValue) Value() Status {
	if v, ok := s.v.Load().(Status); ok {
		return v
	}
	return StatusStopped
}

// AgentStatus describes components of the connector
type AgentStatus struct {
	Controller StatusValue
	Nats       StatusValue
	Scheduler  StatusValue
}

// AgentStatusDTO is the response of the status entrypoint
type AgentStatusDTO struct {
	transit.AgentIdentity
	Build      config.BuildInfo   `json:"build"`
	Controller Status             `json:"controller"`
	Nats       Status             `json:"nats"`
	Scheduler  Status             `json:"scheduler"`
	UpSince    *transit.Timestamp `json:"upSince"`
	Process    *ProcessStats      `json:"process,omitempty"`
	LastErrors []logzer.LogRecord `json:"lastErrors"`
}
