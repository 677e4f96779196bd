package firstrow

import (
	"sort"
	"strings"
)

// Tag sequences produced by TagSequence. Tag 2 marks the farther sector's
// bounds, tag 1 the combined bounds of the nearer sectors.
const (
	TagsEnclosed = "1221" // farther sector inside the nearer span
	TagsFarBelow = "1122" // disjoint, farther sector below
	TagsFarAbove = "2211" // disjoint, farther sector above
)

// TagSequence sorts the four bounds descending and returns their tags in
// order together with the sorted values. Ties keep the order
// farMax, farMin, nearMax, nearMin.
func TagSequence(farMin, farMax, nearMin, nearMax float64) (string, [4]float64) {
	type bound struct {
		v   float64
		tag byte
	}
	b := []bound{{farMax, '2'}, {farMin, '2'}, {nearMax, '1'}, {nearMin, '1'}}
	sort.SliceStable(b, func(i, j int) bool { return b[i].v > b[j].v })

	var sb strings.Builder
	var vals [4]float64
	for i, x := range b {
		sb.WriteByte(x.tag)
		vals[i] = x.v
	}
	return sb.String(), vals
}

// Decision is the outcome of comparing one farther sector with the nearer
// sectors behind which it may hide.
type Decision struct {
	Well    string  `json:"well"`
	Tags    string  `json:"tags"`
	Overlap float64 `json:"overlap_percent"`
	Drop    bool    `json:"drop"`
}

// Decide classifies the farther interval against the nearer span.
func Decide(farMin, farMax, nearMin, nearMax, maxOverlapPercent float64) Decision {
	tags, v := TagSequence(farMin, farMax, nearMin, nearMax)
	d := Decision{Tags: tags}
	switch tags {
	case TagsEnclosed:
		d.Overlap = 100
		d.Drop = true
	case TagsFarBelow, TagsFarAbove:
	default:
		num := v[1] - v[2]
		width := farMax - farMin
		if width == 0 {
			// a zero-width sector is either untouched or fully hidden
			if num != 0 {
				d.Overlap = 100
				d.Drop = true
			}
			return d
		}
		d.Overlap = num / width * 100
		d.Drop = d.Overlap > maxOverlapPercent
	}
	return d
}

// Occluded walks a group of mutually overlapping sectors from the farthest
// r_center inwards and returns the names of the sectors hidden behind the
// nearer ones, in walk order.
func Occluded(group []Sector, maxOverlapPercent float64) []string {
	var dropped []string
	for _, d := range decisions(group, maxOverlapPercent) {
		if d.Drop {
			dropped = append(dropped, d.Well)
		}
	}
	return dropped
}

func decisions(group []Sector, maxOverlapPercent float64) []Decision {
	ordered := byCenterDesc(group)
	var out []Decision
	for i := 0; i < len(ordered)-1; i++ {
		far := ordered[i]
		nearMin, nearMax := ordered[i+1].Min(), ordered[i+1].Max()
		for _, s := range ordered[i+2:] {
			if s.Min() < nearMin {
				nearMin = s.Min()
			}
			if s.Max() > nearMax {
				nearMax = s.Max()
			}
		}
		d := Decide(far.Min(), far.Max(), nearMin, nearMax, maxOverlapPercent)
		d.Well = far.Well
		out = append(out, d)
	}
	return out
}

// removeOccluded runs the occlusion pass over all sectors of one
// reference point and returns the surviving sector names, sorted.
// Sectors already removed still take part in later groups.
func removeOccluded(sectors []Sector, maxOverlapPercent float64) []string {
	ordered := byCenterDesc(sectors)
	removed := make(map[string]bool)
	for _, s := range ordered {
		if removed[s.Well] {
			continue
		}
		lo, hi := s.Min(), s.Max()
		var group []Sector
		for _, o := range ordered {
			if o.touches(lo, hi) {
				group = append(group, o)
			}
		}
		if len(group) > 1 {
			for _, name := range Occluded(group, maxOverlapPercent) {
				removed[name] = true
			}
		}
	}

	var out []string
	for _, s := range ordered {
		if !removed[s.Well] {
			out = append(out, s.Well)
		}
	}
	sort.Strings(out)
	return out
}
