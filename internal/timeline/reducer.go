// Package timeline folds the research loop's event stream into render-ready
// client state: a live per-turn activity timeline, deduplicated image and
// source pools, and a historical archive keyed by assistant-message identity.
package timeline

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/scout/internal/research"
)

// Entry is one rendered activity line, derived 1:1 from a progress event.
type Entry struct {
	Title string `json:"title"`
	Data  string `json:"data"`
}

// State is the reducer's accumulated view. Reduce never mutates its input;
// it is a pure left-fold over the event stream with no lookback beyond the
// previous state, so it can be tested without any rendering environment.
type State struct {
	Live    []Entry
	Images  []research.ImageRecord
	Sources []research.SourceRecord
	Archive map[string][]Entry
	Failed  bool

	open        bool
	seenImages  map[string]struct{}
	seenSources map[string]struct{}
	broken      map[string]struct{}
}

// NewState returns an empty reducer state with no open turn.
func NewState() State {
	return State{
		Archive:     map[string][]Entry{},
		seenImages:  map[string]struct{}{},
		seenSources: map[string]struct{}{},
		broken:      map[string]struct{}{},
	}
}

// Open reports whether a turn is currently accumulating.
func (s State) Open() bool { return s.open }

// clone copies every container so the returned state shares nothing mutable
// with the input.
func (s State) clone() State {
	out := s
	out.Live = append([]Entry(nil), s.Live...)
	out.Images = append([]research.ImageRecord(nil), s.Images...)
	out.Sources = append([]research.SourceRecord(nil), s.Sources...)
	out.Archive = make(map[string][]Entry, len(s.Archive))
	for k, v := range s.Archive {
		out.Archive[k] = v
	}
	out.seenImages = copySet(s.seenImages)
	out.seenSources = copySet(s.seenSources)
	out.broken = copySet(s.broken)
	return out
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// Reduce folds one event into the state. A round-0 queries_generated event
// opens a fresh turn (clearing the previous live timeline and pools); events
// arriving with no open turn, such as late or duplicate deliveries after
// finalization, are dropped rather than creating a new archive entry.
func Reduce(s State, ev research.Event) State {
	if !s.open {
		if ev.Type != research.EventQueriesGenerated || ev.Round != 0 {
			return s
		}
		s = s.clone()
		s.open = true
		s.Failed = false
		s.Live = nil
		s.Images = nil
		s.Sources = nil
		s.seenImages = map[string]struct{}{}
		s.seenSources = map[string]struct{}{}
		s.broken = map[string]struct{}{}
		s.Live = append(s.Live, entryFor(ev))
		return s
	}

	s = s.clone()
	switch ev.Type {
	case research.EventFinalized:
		// Snapshot the live timeline as it stood before this event, then
		// close the turn. Only the first finalized event archives.
		if _, ok := s.Archive[ev.MessageID]; !ok && ev.MessageID != "" {
			s.Archive[ev.MessageID] = append([]Entry(nil), s.Live...)
		}
		s.open = false
		return s
	case research.EventErrored:
		s.Live = append(s.Live, entryFor(ev))
		s.Failed = true
		s.open = false
		return s
	case research.EventResearchGathered:
		for _, src := range ev.Sources {
			if _, ok := s.seenSources[src.URL]; ok || src.URL == "" {
				continue
			}
			s.seenSources[src.URL] = struct{}{}
			s.Sources = append(s.Sources, src)
		}
		for _, img := range ev.Images {
			if _, ok := s.seenImages[img.URL]; ok || img.URL == "" {
				continue
			}
			s.seenImages[img.URL] = struct{}{}
			s.Images = append(s.Images, img)
		}
	}
	s.Live = append(s.Live, entryFor(ev))
	return s
}

// MarkImageBroken removes a URL from the render set after a failed client
// fetch. The URL stays in the dedup identity set so a later event cannot
// reintroduce it as if it were new.
func MarkImageBroken(s State, url string) State {
	s = s.clone()
	s.broken[url] = struct{}{}
	s.seenImages[url] = struct{}{}
	kept := s.Images[:0]
	for _, img := range s.Images {
		if img.URL != url {
			kept = append(kept, img)
		}
	}
	s.Images = kept
	return s
}

// entryFor maps each event variant to its fixed title/body rendering rule.
func entryFor(ev research.Event) Entry {
	switch ev.Type {
	case research.EventQueriesGenerated:
		return Entry{Title: "Generating Search Queries", Data: strings.Join(ev.Queries, ", ")}
	case research.EventResearchGathered:
		data := ev.Summary
		if data == "" {
			data = fmt.Sprintf("Gathered %d sources.", len(ev.Sources))
		}
		return Entry{Title: "Web Research", Data: data}
	case research.EventReflected:
		if ev.Sufficient {
			return Entry{Title: "Reflection", Data: "Search successful, generating final answer."}
		}
		if ev.Forced {
			return Entry{Title: "Reflection", Data: "Research budget exhausted, finalizing with what was found."}
		}
		return Entry{Title: "Reflection", Data: "Need more information, searching for " + strings.Join(ev.FollowUps, ", ")}
	case research.EventToolExecuted:
		return Entry{Title: "Tool Execution", Data: fmt.Sprintf("%s: %s", ev.ToolName, ev.ToolStatus)}
	case research.EventFinalized:
		return Entry{Title: "Finalizing Answer", Data: "Composing and presenting the final answer."}
	case research.EventErrored:
		return Entry{Title: "Research Failed", Data: ev.Error}
	default:
		return Entry{Title: string(ev.Type), Data: ""}
	}
}
