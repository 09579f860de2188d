package qpcr

// Key identifies a replicate group.
type Key struct {
	Sample string
	Target string
}

// View groups wells by (sample, target) and by target. Keys and targets are
// kept in first-appearance order so iteration follows the input file.
type View struct {
	keys     []Key
	groups   map[Key][]*WellItem
	targets  []string
	byTarget map[string][]*WellItem
}

// NewView indexes wells. Wells within a group keep input order.
func NewView(wells []*WellItem) *View {
	v := &View{
		groups:   make(map[Key][]*WellItem),
		byTarget: make(map[string][]*WellItem),
	}
	for _, w := range wells {
		k := Key{Sample: w.Sample, Target: w.Target}
		if _, ok := v.groups[k]; !ok {
			v.keys = append(v.keys, k)
		}
		v.groups[k] = append(v.groups[k], w)

		if _, ok := v.byTarget[w.Target]; !ok {
			v.targets = append(v.targets, w.Target)
		}
		v.byTarget[w.Target] = append(v.byTarget[w.Target], w)
	}
	return v
}

// Keys returns the (sample, target) groups in first-appearance order.
func (v *View) Keys() []Key {
	return append([]Key(nil), v.keys...)
}

// Wells returns the replicate wells of one group, or nil.
func (v *View) Wells(sample, target string) []*WellItem {
	return v.groups[Key{Sample: sample, Target: target}]
}

// Targets returns the targets in first-appearance order.
func (v *View) Targets() []string {
	return append([]string(nil), v.targets...)
}

// TargetWells returns every well of a target across samples, or nil.
func (v *View) TargetWells(target string) []*WellItem {
	return v.byTarget[target]
}

// HasSample reports whether any group uses sample.
func (v *View) HasSample(sample string) bool {
	for _, k := range v.keys {
		if k.Sample == sample {
			return true
		}
	}
	return false
}
