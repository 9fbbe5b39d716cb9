package constraint

import (
	errs "github.com/matzehuels/tether/pkg/errors"
)

// AnchorRecord is the serialized form of an [AnchorRef].
type AnchorRecord struct {
	Object string `json:"object_id" toml:"object_id"`
	Type   string `json:"anchor_type" toml:"anchor_type"`
	Index  int    `json:"anchor_index" toml:"anchor_index"`
}

// Record is the serialized form of a [Constraint]. Pointer fields
// distinguish "missing" from a legitimate zero value when loading.
type Record struct {
	ID             string       `json:"id" toml:"id"`
	AnchorA        AnchorRecord `json:"anchor_a" toml:"anchor_a"`
	AnchorB        AnchorRecord `json:"anchor_b" toml:"anchor_b"`
	TargetDistance *float64     `json:"target_distance" toml:"target_distance"`
	Visible        *bool        `json:"visible,omitempty" toml:"visible,omitempty"`
}

func anchorRecord(a AnchorRef) AnchorRecord {
	return AnchorRecord{Object: string(a.Object), Type: a.Type.String(), Index: a.Index}
}

// ToList returns one record per constraint in insertion order. Every field,
// including ids and anchor indexes, survives a [FromList] round trip.
func (g *Graph) ToList() []Record {
	out := make([]Record, 0, len(g.order))
	for _, id := range g.order {
		c := g.constraints[id]
		target, visible := c.TargetDistance, c.Visible
		out = append(out, Record{
			ID:             c.ID,
			AnchorA:        anchorRecord(c.A),
			AnchorB:        anchorRecord(c.B),
			TargetDistance: &target,
			Visible:        &visible,
		})
	}
	return out
}

// FromList builds a graph from serialized records.
//
// Loading is all-or-nothing: an unknown anchor type, a missing id, object or
// target distance, a non-finite distance, a negative anchor index or a
// duplicate id fails the whole call with an INVALID_RECORD or
// INVALID_ANCHOR_TYPE error and no graph. A missing visible flag defaults to
// true.
func FromList(records []Record) (*Graph, error) {
	g := New()
	for i, r := range records {
		if err := errs.ValidateObjectID(r.ID); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidRecord, err, "record %d: invalid id", i)
		}
		if _, dup := g.constraints[r.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidRecord, "record %d: duplicate id %q", i, r.ID)
		}
		a, err := parseAnchor(r.AnchorA)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, "record %d (%s): anchor_a", i, r.ID)
		}
		b, err := parseAnchor(r.AnchorB)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, "record %d (%s): anchor_b", i, r.ID)
		}
		if r.TargetDistance == nil {
			return nil, errs.New(errs.ErrCodeInvalidRecord, "record %d (%s): missing target_distance", i, r.ID)
		}
		if err := errs.ValidateDistance(*r.TargetDistance); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidRecord, err, "record %d (%s)", i, r.ID)
		}
		visible := true
		if r.Visible != nil {
			visible = *r.Visible
		}
		g.AddConstraint(a, b, *r.TargetDistance, WithID(r.ID), WithVisible(visible))
	}
	return g, nil
}

func parseAnchor(r AnchorRecord) (AnchorRef, error) {
	if err := errs.ValidateObjectID(r.Object); err != nil {
		return AnchorRef{}, errs.Wrap(errs.ErrCodeInvalidRecord, err, "invalid object_id")
	}
	t, ok := ParseAnchorType(r.Type)
	if !ok {
		return AnchorRef{}, errs.New(errs.ErrCodeInvalidAnchorType, "unknown anchor type %q", r.Type)
	}
	if r.Index < 0 {
		return AnchorRef{}, errs.New(errs.ErrCodeInvalidRecord, "negative anchor_index %d", r.Index)
	}
	return AnchorRef{Object: ObjectID(r.Object), Type: t, Index: r.Index}, nil
}
