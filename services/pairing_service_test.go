package services

import (
	"FamilyTime/models"
	"FamilyTime/repositories/memory"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPairing(parents *memory.ParentRepository, codes ...int) *PairingService {
	svc := NewPairingService(parents)
	svc.Now = func() time.Time { return fixedNow }
	i := 0
	svc.Intn = func(int) (int, error) {
		v := codes[i%len(codes)]
		i++
		return v, nil
	}
	return svc
}

func TestEnsureValidParentCodeCreatesProfile(t *testing.T) {
	parents := memory.NewParentRepository()
	svc := newPairing(parents, 3821)

	parent, err := svc.EnsureValidParentCode(parentUID)
	require.NoError(t, err)
	assert.Equal(t, "4821", parent.Code)
	assert.Equal(t, models.RoleParent, parent.Role)

	stored, err := parents.FindByFirebaseUID(parentUID)
	require.NoError(t, err)
	assert.True(t, stored.IsCodeValid(fixedNow))
}

func TestEnsureValidParentCodeKeepsValidCode(t *testing.T) {
	expires := fixedNow.Add(time.Hour)
	parents := memory.NewParentRepository(models.Parent{FirebaseUID: parentUID, Code: "5555", CodeExpiresAt: &expires})
	svc := newPairing(parents, 100)

	parent, err := svc.EnsureValidParentCode(parentUID)
	require.NoError(t, err)
	assert.Equal(t, "5555", parent.Code)

	expired := fixedNow.Add(-time.Minute)
	require.NoError(t, parents.Save(models.Parent{FirebaseUID: parentUID, Code: "5555", CodeExpiresAt: &expired}))
	parent, err = svc.EnsureValidParentCode(parentUID)
	require.NoError(t, err)
	assert.Equal(t, "1100", parent.Code)
}

func TestRefreshParentCodeSkipsTakenCodes(t *testing.T) {
	expires := fixedNow.Add(time.Hour)
	parents := memory.NewParentRepository(models.Parent{FirebaseUID: otherParentUID, Code: "1000", CodeExpiresAt: &expires})
	svc := newPairing(parents, 0, 1)

	parent, err := svc.RefreshParentCode(parentUID)
	require.NoError(t, err)
	assert.Equal(t, "1001", parent.Code)

	valid, err := svc.IsParentCodeValid("1001")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.IsParentCodeValid("9999")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestPairingCodesComeFromCryptoSource(t *testing.T) {
	for i := 0; i < 200; i++ {
		n, err := cryptoIntn(9000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 9000)
	}

	parents := memory.NewParentRepository()
	parent, err := NewPairingService(parents).RefreshParentCode(parentUID)
	require.NoError(t, err)
	require.Len(t, parent.Code, 4)
	code, err := strconv.Atoi(parent.Code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, code, 1000)
	assert.LessOrEqual(t, code, 9999)
}

func TestRefreshParentCodeFailsWhenRandomSourceFails(t *testing.T) {
	parents := memory.NewParentRepository()
	svc := NewPairingService(parents)
	svc.Intn = func(int) (int, error) { return 0, errors.New("entropy unavailable") }

	_, err := svc.RefreshParentCode(parentUID)
	assert.Equal(t, CodeInternal, CodeOf(err))

	_, err = parents.FindByFirebaseUID(parentUID)
	assert.Error(t, err)
}
