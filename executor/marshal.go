package executor

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// byteLookupEntry is the serialized form of one multiplicity-map entry; the
// map itself is flattened into a canonically ordered slice so that equal
// records serialize identically.
type byteLookupEntry struct {
	Event ByteLookupEvent `cbor:"1,keyasint"`
	Mult  uint64          `cbor:"2,keyasint"`
}

type rawRecord struct {
	Shard         uint32            `cbor:"1,keyasint"`
	AddEvents     []AluEvent        `cbor:"2,keyasint"`
	SubEvents     []AluEvent        `cbor:"3,keyasint"`
	BitwiseEvents []AluEvent        `cbor:"4,keyasint"`
	CpuEvents     []AluEvent        `cbor:"5,keyasint"`
	ByteLookups   []byteLookupEntry `cbor:"6,keyasint"`
	PublicValues  []byte            `cbor:"7,keyasint,omitempty"`
}

// WriteTo serializes the record in deterministic CBOR. It implements
// io.WriterTo.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	raw := rawRecord{
		Shard:         r.Shard,
		AddEvents:     r.AddEvents,
		SubEvents:     r.SubEvents,
		BitwiseEvents: r.BitwiseEvents,
		CpuEvents:     r.CpuEvents,
		PublicValues:  r.PublicValues,
	}
	for _, e := range r.SortedByteLookups() {
		raw.ByteLookups = append(raw.ByteLookups, byteLookupEntry{Event: e, Mult: r.ByteLookups[e]})
	}
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	buf, err := enc.Marshal(&raw)
	if err != nil {
		return 0, fmt.Errorf("serializing record: %w", err)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom deserializes the record from CBOR. It implements io.ReaderFrom.
func (r *Record) ReadFrom(reader io.Reader) (int64, error) {
	buf, err := io.ReadAll(reader)
	if err != nil {
		return int64(len(buf)), err
	}
	var raw rawRecord
	if err := cbor.Unmarshal(buf, &raw); err != nil {
		return int64(len(buf)), fmt.Errorf("deserializing record: %w", err)
	}
	r.Shard = raw.Shard
	r.AddEvents = raw.AddEvents
	r.SubEvents = raw.SubEvents
	r.BitwiseEvents = raw.BitwiseEvents
	r.CpuEvents = raw.CpuEvents
	r.PublicValues = raw.PublicValues
	r.ByteLookups = make(ByteLookupMap, len(raw.ByteLookups))
	for _, entry := range raw.ByteLookups {
		r.ByteLookups[entry.Event] += entry.Mult
	}
	return int64(len(buf)), nil
}
