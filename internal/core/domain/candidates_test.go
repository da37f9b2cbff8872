package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/camslew/internal/core/domain"
)

var (
	pA = domain.GeoPoint{Lat: 1, Lon: 1}
	pB = domain.GeoPoint{Lat: 2, Lon: 2}
	pC = domain.GeoPoint{Lat: 3, Lon: 3}
)

func TestCandidateSet_AddKeepsOrderAndDuplicates(t *testing.T) {
	var s domain.CandidateSet
	assert.True(t, s.IsEmpty())

	s = s.Add(pA).Add(pB).Add(pA)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []domain.GeoPoint{pA, pB, pA}, s.Points())
}

func TestCandidateSet_AddDoesNotAlias(t *testing.T) {
	base := domain.NewCandidateSet(pA, pB)
	left := base.Add(pC)
	right := base.Add(pA)

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, pC, left.At(2))
	assert.Equal(t, pA, right.At(2))
}

func TestCandidateSet_RemoveAt(t *testing.T) {
	s := domain.NewCandidateSet(pA, pB, pC)

	got, err := s.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, []domain.GeoPoint{pA, pC}, got.Points())
	assert.Equal(t, []domain.GeoPoint{pA, pB, pC}, s.Points(), "receiver must be unchanged")

	_, err = s.RemoveAt(3)
	var ierr *domain.IndexError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, 3, ierr.Index)
	assert.Equal(t, 3, ierr.Len)

	_, err = s.RemoveAt(-1)
	assert.Error(t, err)
}

func TestCandidateSet_PointsIsCopy(t *testing.T) {
	s := domain.NewCandidateSet(pA)
	pts := s.Points()
	pts[0] = pC
	assert.Equal(t, pA, s.At(0))
}

func TestCandidateSet_JSON(t *testing.T) {
	b, err := json.Marshal(domain.CandidateSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	b, err = json.Marshal(domain.NewCandidateSet(pA, pB))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lat":1,"lon":1},{"lat":2,"lon":2}]`, string(b))

	var s domain.CandidateSet
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, []domain.GeoPoint{pA, pB}, s.Points())
}
