package executor

import (
	"sort"
)

// Record is one shard of execution: per-event-type ordered lists produced by
// the execution engine, optionally extended by chip dependency passes with
// synthetic byte-lookup facts consumed by the byte oracle chip.
type Record struct {
	Shard uint32

	AddEvents     []AluEvent
	SubEvents     []AluEvent
	BitwiseEvents []AluEvent
	CpuEvents     []AluEvent

	ByteLookups ByteLookupMap

	// PublicValues is the opaque public-input digest of the shard, set by the
	// execution engine and carried through untouched.
	PublicValues []byte
}

// NewRecord returns an empty record for the given shard index.
func NewRecord(shard uint32) *Record {
	return &Record{
		Shard:       shard,
		ByteLookups: make(ByteLookupMap),
	}
}

// AddByteLookupEvent implements ByteRecord.
func (r *Record) AddByteLookupEvent(e ByteLookupEvent) {
	if r.ByteLookups == nil {
		r.ByteLookups = make(ByteLookupMap)
	}
	r.ByteLookups[e]++
}

// AddByteLookupEventsFromMaps merges task-local maps into the record,
// summing multiplicities. The merge is commutative; callers may aggregate
// the maps in parallel and combine them here serially in any order.
func (r *Record) AddByteLookupEventsFromMaps(maps []ByteLookupMap) {
	if r.ByteLookups == nil {
		r.ByteLookups = make(ByteLookupMap)
	}
	for _, m := range maps {
		for e, mult := range m {
			r.ByteLookups[e] += mult
		}
	}
}

// Append moves the events of other into r, preserving order within each
// event type.
func (r *Record) Append(other *Record) {
	r.AddEvents = append(r.AddEvents, other.AddEvents...)
	r.SubEvents = append(r.SubEvents, other.SubEvents...)
	r.BitwiseEvents = append(r.BitwiseEvents, other.BitwiseEvents...)
	r.CpuEvents = append(r.CpuEvents, other.CpuEvents...)
	r.AddByteLookupEventsFromMaps([]ByteLookupMap{other.ByteLookups})
	if len(r.PublicValues) == 0 {
		r.PublicValues = other.PublicValues
	}
}

// SortedByteLookups returns the distinct byte-lookup facts of the record in
// a canonical order, so that trace layouts derived from the map are
// deterministic.
func (r *Record) SortedByteLookups() []ByteLookupEvent {
	events := make([]ByteLookupEvent, 0, len(r.ByteLookups))
	for e := range r.ByteLookups {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Opcode != b.Opcode {
			return a.Opcode < b.Opcode
		}
		if a.B != b.B {
			return a.B < b.B
		}
		if a.C != b.C {
			return a.C < b.C
		}
		return a.A < b.A
	})
	return events
}
