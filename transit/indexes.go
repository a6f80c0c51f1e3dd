package transit

import "strconv"

// RebuildIndexes regenerates the four transient mappings described in
// §4.2 from the network's persistent arrays:
//
//  1. patternsForStop: for each stop, every pattern touching it.
//  2. stopForStreetVertex: inverse of streetVertexForStop.
//  3. stopIndexForID: inverse of stopIDForIndex.
//  4. frequencyEntryIndexForID: maps a synthesized frequency-entry id to
//     (pattern, schedule, entry).
//
// It is idempotent: calling it twice in a row produces byte-identical
// indexes, since it always rebuilds from the persistent arrays rather
// than incrementally patching the previous result.
func (n *TransitNetwork) RebuildIndexes() {
	n.patternsForStop = make([][]int, n.StopCount())
	seen := make([]map[int]bool, n.StopCount())

	for patternIdx, p := range n.Patterns {
		for _, stopIdx := range p.Stops {
			if seen[stopIdx] == nil {
				seen[stopIdx] = map[int]bool{}
			}
			if seen[stopIdx][patternIdx] {
				continue
			}
			seen[stopIdx][patternIdx] = true
			n.patternsForStop[stopIdx] = append(n.patternsForStop[stopIdx], patternIdx)
		}
	}

	n.stopForStreetVertex = make(map[int]int, n.StopCount())
	for i, vertex := range n.streetVertexForStop {
		if vertex >= 0 {
			n.stopForStreetVertex[vertex] = i
		}
	}

	n.stopIndexForID = make(map[string]int, n.StopCount())
	for i, id := range n.stopIDForIndex {
		n.stopIndexForID[id] = i
	}

	n.frequencyEntryIndexForID = make(map[string]frequencyRef)
	for patternIdx, p := range n.Patterns {
		for scheduleIdx, s := range p.Schedules {
			for entryIdx := range s.HeadwaySeconds {
				id := frequencyEntryID(s.TripID, entryIdx)
				n.frequencyEntryIndexForID[id] = frequencyRef{
					PatternIndex:  patternIdx,
					ScheduleIndex: scheduleIdx,
					EntryIndex:    entryIdx,
				}
			}
		}
	}
}

// frequencyEntryID synthesizes a stable external id for one frequency
// entry of a trip: tripID is already globally unique (feed-scoped), and
// entry index disambiguates a trip with multiple headway windows.
func frequencyEntryID(tripID string, entryIndex int) string {
	return tripID + "#" + strconv.Itoa(entryIndex)
}

// FrequencyEntry resolves a frequency-entry id back to its
// (pattern, schedule, entry) location.
func (n *TransitNetwork) FrequencyEntry(id string) (ref frequencyRef, ok bool) {
	ref, ok = n.frequencyEntryIndexForID[id]
	return
}
