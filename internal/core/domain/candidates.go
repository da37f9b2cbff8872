package domain

import "encoding/json"

// CandidateSet is an ordered list of candidate points. Insertion order is
// kept and duplicates are allowed. Add and RemoveAt return a new set and
// never modify the receiver, so earlier values stay valid.
type CandidateSet struct {
	points []GeoPoint
}

// NewCandidateSet returns a set holding a copy of points, in order.
func NewCandidateSet(points ...GeoPoint) CandidateSet {
	if len(points) == 0 {
		return CandidateSet{}
	}
	cp := make([]GeoPoint, len(points))
	copy(cp, points)
	return CandidateSet{points: cp}
}

// Add returns a new set with p appended.
func (s CandidateSet) Add(p GeoPoint) CandidateSet {
	next := make([]GeoPoint, len(s.points), len(s.points)+1)
	copy(next, s.points)
	return CandidateSet{points: append(next, p)}
}

// RemoveAt returns a new set without the element at index i.
func (s CandidateSet) RemoveAt(i int) (CandidateSet, error) {
	if i < 0 || i >= len(s.points) {
		return s, &IndexError{Index: i, Len: len(s.points)}
	}
	next := make([]GeoPoint, 0, len(s.points)-1)
	next = append(next, s.points[:i]...)
	next = append(next, s.points[i+1:]...)
	return CandidateSet{points: next}, nil
}

func (s CandidateSet) IsEmpty() bool { return len(s.points) == 0 }

func (s CandidateSet) Len() int { return len(s.points) }

// At returns the point at index i. It panics when i is out of range.
func (s CandidateSet) At(i int) GeoPoint { return s.points[i] }

// Points returns a copy of the points in insertion order.
func (s CandidateSet) Points() []GeoPoint {
	cp := make([]GeoPoint, len(s.points))
	copy(cp, s.points)
	return cp
}

// MarshalJSON encodes the set as a plain JSON array.
func (s CandidateSet) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.points)
}

func (s *CandidateSet) UnmarshalJSON(b []byte) error {
	var points []GeoPoint
	if err := json.Unmarshal(b, &points); err != nil {
		return err
	}
	*s = NewCandidateSet(points...)
	return nil
}
