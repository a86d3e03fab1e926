package grid

import (
	"fmt"

	"github.com/decibelcooper/hgcalhistory/event"
)

// Labeler assigns the identity code stored in the label grid of a
// MaxProjection for a hit deposited by trackID.
type Labeler interface {
	Label(ev *event.Event, trackID int64) int32
}

// SequentialLabels numbers distinct (event, track id) pairs in order of
// first encounter, starting at 1. Track ids restart in every event, so the
// same id in two events gets two labels. Only the ids of the most recent
// event are remembered; hits must be labeled one event at a time. Labels are
// only meaningful within one instance.
type SequentialLabels struct {
	ev   *event.Event
	ids  map[int64]int32
	next int32
}

func NewSequentialLabels() *SequentialLabels {
	return &SequentialLabels{ids: make(map[int64]int32), next: 1}
}

func (s *SequentialLabels) Label(ev *event.Event, trackID int64) int32 {
	if ev != s.ev {
		s.ev = ev
		clear(s.ids)
	}
	if l, ok := s.ids[trackID]; ok {
		return l
	}
	l := s.next
	s.ids[trackID] = l
	s.next++
	return l
}

// Len returns the number of labels handed out so far.
func (s *SequentialLabels) Len() int { return int(s.next - 1) }

// PDGLabels labels a hit with the pdgid of its track, resolved through the
// event. Hits without a track, or whose track is not in the event, get
// event.PDGUnspecified.
type PDGLabels struct{}

func (PDGLabels) Label(ev *event.Event, trackID int64) int32 {
	if trackID == event.NoTrack || ev == nil {
		return event.PDGUnspecified
	}
	t, ok := ev.LookupTrack(trackID)
	if !ok {
		return event.PDGUnspecified
	}
	return t.PDG
}

// ParseLabeler returns the strategy named by s: "pdgid" or "sequential".
func ParseLabeler(s string) (Labeler, error) {
	switch s {
	case "pdgid", "pdg":
		return PDGLabels{}, nil
	case "sequential", "seq":
		return NewSequentialLabels(), nil
	default:
		return nil, fmt.Errorf("unknown label strategy %q", s)
	}
}
