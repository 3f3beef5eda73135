package model

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Status is the lifecycle state of a license key.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusApproved Status = "APPROVED"
	StatusInactive Status = "INACTIVE"
	StatusExpired  Status = "EXPIRED"
)

// Statuses lists every state in display order.
var Statuses = []Status{StatusPending, StatusActive, StatusApproved, StatusInactive, StatusExpired}

var statusLabels = map[Status]string{
	StatusActive:   "Activa",
	StatusInactive: "Inactiva",
	StatusApproved: "Aprobada",
	StatusPending:  "Pendiente",
	StatusExpired:  "Expirada",
}

// ErrUnknownStatus is returned by ParseStatus for values outside the enum.
var ErrUnknownStatus = errors.New("unknown key status")

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the localized display label, or the raw value if unknown.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the enum value in any case.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", v)
	}
	return s, nil
}
