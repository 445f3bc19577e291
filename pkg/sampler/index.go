package sampler

import "slices"

// DefaultCountStart is the value a frequency count starts from the first time a key is seen
const DefaultCountStart = 4

// Triple is one training fact: (head, relation, tail) plus the head's attribute vector
type Triple struct {
	Head     int64
	Relation int64
	Tail     int64
	Attr     []float64
}

// Pair keys the frequency counts.
// Tails are stored under the reversed relation id -relation-1 so they never
// collide with a (head, relation) key.
type Pair struct {
	Entity   int64
	Relation int64
}

// HeadRel keys the true tails of a (head, relation)
type HeadRel struct {
	Head     int64
	Relation int64
}

// RelTail keys the true heads of a (relation, tail)
type RelTail struct {
	Relation int64
	Tail     int64
}

// CountFrequency counts (head, relation) and (tail, -relation-1) occurrences.
// A key seen for the first time is set to start, every later occurrence adds one.
func CountFrequency(triples []Triple, start int64) map[Pair]int64 {
	count := make(map[Pair]int64)
	bump := func(p Pair) {
		if _, ok := count[p]; !ok {
			count[p] = start
		} else {
			count[p]++
		}
	}

	for _, t := range triples {
		bump(Pair{Entity: t.Head, Relation: t.Relation})
		bump(Pair{Entity: t.Tail, Relation: -t.Relation - 1})
	}
	return count
}

// TrueHeadAndTail groups heads by (relation, tail) and tails by (head, relation).
// Every group is sorted and deduplicated.
func TrueHeadAndTail(triples []Triple) (map[RelTail][]int64, map[HeadRel][]int64) {
	trueHead := make(map[RelTail][]int64)
	trueTail := make(map[HeadRel][]int64)

	for _, t := range triples {
		hr := HeadRel{Head: t.Head, Relation: t.Relation}
		trueTail[hr] = append(trueTail[hr], t.Tail)

		rt := RelTail{Relation: t.Relation, Tail: t.Tail}
		trueHead[rt] = append(trueHead[rt], t.Head)
	}

	for k, heads := range trueHead {
		trueHead[k] = uniq(heads)
	}
	for k, tails := range trueTail {
		trueTail[k] = uniq(tails)
	}

	return trueHead, trueTail
}

// TrueAttr maps every head to its attribute vector and returns the map size
// as the derived entity count. When a head appears more than once the last
// triple's attributes win.
func TrueAttr(triples []Triple) (map[int64][]float64, int64) {
	attrs := make(map[int64][]float64)
	for _, t := range triples {
		attrs[t.Head] = t.Attr
	}
	return attrs, int64(len(attrs))
}

func uniq(ids []int64) []int64 {
	slices.Sort(ids)
	return slices.Clip(slices.Compact(ids))
}

func contains(sorted []int64, id int64) bool {
	_, found := slices.BinarySearch(sorted, id)
	return found
}
