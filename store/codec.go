package store

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Sample is one raw measurement: a series label, the unit domain its
// value is denominated in, and the value in that domain's base unit.
type Sample struct {
	Time   uint32  `json:"time"`
	Label  string  `json:"label"`
	Domain string  `json:"domain"`
	Value  float64 `json:"value"`
}

// wire field numbers, fixed forever
const (
	fieldSample protowire.Number = 1 // block level, length-delimited

	fieldTime   protowire.Number = 1
	fieldLabel  protowire.Number = 2
	fieldDomain protowire.Number = 3
	fieldValue  protowire.Number = 4
)

// marshalBlock encodes samples as a sequence of length-delimited
// sample records.
func marshalBlock(samples []*Sample) []byte {
	var buf []byte
	var rec []byte
	for _, s := range samples {
		rec = rec[:0]
		rec = protowire.AppendTag(rec, fieldTime, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(s.Time))
		rec = protowire.AppendTag(rec, fieldLabel, protowire.BytesType)
		rec = protowire.AppendString(rec, s.Label)
		rec = protowire.AppendTag(rec, fieldDomain, protowire.BytesType)
		rec = protowire.AppendString(rec, s.Domain)
		rec = protowire.AppendTag(rec, fieldValue, protowire.Fixed64Type)
		rec = protowire.AppendFixed64(rec, math.Float64bits(s.Value))
		buf = protowire.AppendTag(buf, fieldSample, protowire.BytesType)
		buf = protowire.AppendBytes(buf, rec)
	}
	return buf
}

// unmarshalBlock decodes a block, skipping unknown fields.
func unmarshalBlock(data []byte) ([]*Sample, error) {
	var samples []*Sample
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("failed to consume block tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if num != fieldSample || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("failed to skip block field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}
		rec, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("failed to consume sample record: %w", protowire.ParseError(n))
		}
		data = data[n:]
		s, err := unmarshalSample(rec)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func unmarshalSample(rec []byte) (*Sample, error) {
	s := &Sample{}
	for len(rec) > 0 {
		num, typ, n := protowire.ConsumeTag(rec)
		if n < 0 {
			return nil, fmt.Errorf("failed to consume sample tag: %w", protowire.ParseError(n))
		}
		rec = rec[n:]
		switch {
		case num == fieldTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rec)
			if n < 0 {
				return nil, fmt.Errorf("failed to consume time: %w", protowire.ParseError(n))
			}
			s.Time = uint32(v)
			rec = rec[n:]
		case num == fieldLabel && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(rec)
			if n < 0 {
				return nil, fmt.Errorf("failed to consume label: %w", protowire.ParseError(n))
			}
			s.Label = v
			rec = rec[n:]
		case num == fieldDomain && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(rec)
			if n < 0 {
				return nil, fmt.Errorf("failed to consume domain: %w", protowire.ParseError(n))
			}
			s.Domain = v
			rec = rec[n:]
		case num == fieldValue && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(rec)
			if n < 0 {
				return nil, fmt.Errorf("failed to consume value: %w", protowire.ParseError(n))
			}
			s.Value = math.Float64frombits(v)
			rec = rec[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, rec)
			if n < 0 {
				return nil, fmt.Errorf("failed to skip sample field %d: %w", num, protowire.ParseError(n))
			}
			rec = rec[n:]
		}
	}
	return s, nil
}
