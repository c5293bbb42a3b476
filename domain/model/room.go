package model

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultRoomCapacity is the number of participants a room admits unless configured otherwise.
const DefaultRoomCapacity = 2

type RoomMeta struct {
	ID        string        `json:"roomId"`
	CreatedAt time.Time     `json:"createdAt"`
	TTL       time.Duration `json:"ttl"`
	Connected []string      `json:"connected"`
}

func (r RoomMeta) Members() mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(r.Connected...)
}

func (r RoomMeta) IsMember(token string) bool {
	if token == "" {
		return false
	}
	return r.Members().Contains(token)
}

// AdmissionStatus is the outcome of a single admission attempt.
type AdmissionStatus int

const (
	Admitted AdmissionStatus = iota
	AlreadyMember
	Full
	NotFound
)

func (s AdmissionStatus) String() string {
	switch s {
	case Admitted:
		return "admitted"
	case AlreadyMember:
		return "already_member"
	case Full:
		return "full"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

type Admission struct {
	Status AdmissionStatus
	Token  string
	// Members is the membership size observed by the admission step.
	Members int
}
