package event

import (
	"fmt"
	"log/slog"
)

// LinkStatus says how far the track → vertex → parent chain resolved.
type LinkStatus int

const (
	// ChainNoVertex: the track has no production vertex.
	ChainNoVertex LinkStatus = iota
	// ChainPrimary: the vertex exists and has no parent track.
	ChainPrimary
	// ChainParent: the vertex's parent track was found.
	ChainParent
	// ChainBroken: the vertex names a parent track that is not in the event.
	ChainBroken
)

func (s LinkStatus) String() string {
	switch s {
	case ChainNoVertex:
		return "no vertex"
	case ChainPrimary:
		return "no parent"
	case ChainParent:
		return "parent"
	case ChainBroken:
		return "broken parent"
	default:
		return fmt.Sprintf("LinkStatus(%d)", int(s))
	}
}

// ChainLink is one step of the decay-chain walk. Vertex is set unless
// Status is ChainNoVertex, Parent only for ChainParent, Err only for
// ChainBroken.
type ChainLink struct {
	Track  Track
	Vertex Vertex
	Parent Track
	Status LinkStatus
	Err    error
}

// DecayChain resolves, for every track in input order, its vertex and that
// vertex's parent track. A broken link is reported in its ChainLink and the
// walk continues with the next track.
func (e *Event) DecayChain() []ChainLink {
	links := make([]ChainLink, 0, len(e.tracks))
	for _, t := range e.tracks {
		link := ChainLink{Track: t}
		v, ok := e.VertexForTrack(t)
		if !ok {
			link.Status = ChainNoVertex
			links = append(links, link)
			continue
		}
		link.Vertex = v

		parent, ok, err := e.ParentTrackOf(v)
		switch {
		case err != nil:
			link.Status = ChainBroken
			link.Err = err
		case ok:
			link.Status = ChainParent
			link.Parent = parent
		default:
			link.Status = ChainPrimary
		}
		links = append(links, link)
	}
	return links
}

// ChainCounts tallies the statuses of a walk.
func ChainCounts(links []ChainLink) map[LinkStatus]int {
	counts := make(map[LinkStatus]int, 4)
	for _, l := range links {
		counts[l.Status]++
	}
	return counts
}

// LogDecayChain writes the decay-chain walk to logger, or to the event's
// logger when logger is nil.
func (e *Event) LogDecayChain(logger *slog.Logger) {
	if logger == nil {
		logger = e.logger
	}
	for _, link := range e.DecayChain() {
		if link.Status == ChainNoVertex {
			logger.Info(fmt.Sprintf("%s has no vertex", link.Track), "module", "decay")
			continue
		}
		logger.Debug(link.Track.String(), "module", "decay")
		logger.Debug(fmt.Sprintf("  has vertex index match with %s", link.Vertex), "module", "decay")
		switch link.Status {
		case ChainParent:
			logger.Debug(fmt.Sprintf("    which has a parent track_id match with: %s", link.Parent), "module", "decay")
		case ChainBroken:
			logger.Debug(fmt.Sprintf("    which has a parent track_id %d but it could not be found", link.Vertex.ParentID),
				"module", "decay")
		default:
			logger.Debug("    which has no parent", "module", "decay")
		}
	}
}
