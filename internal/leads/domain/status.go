package domain

import (
	"fmt"
	"strings"
)

// Status is the operator workflow position of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// Statuses lists every recognized status in workflow order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

func (s Status) String() string { return string(s) }

// IsValid reports whether s is a recognized status.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input to a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// ClassifyStatus is the initial status for a freshly scored lead.
func ClassifyStatus(score int) Status {
	switch {
	case score >= 75:
		return StatusQualified
	case score >= 40:
		return StatusContacted
	default:
		return StatusNew
	}
}
