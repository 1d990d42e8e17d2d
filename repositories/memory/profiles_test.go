package memory

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildRepositoryFindByParentAndName(t *testing.T) {
	repo := NewChildRepository(
		models.Child{FirebaseUID: "c1", ParentFirebaseUID: "p1", Name: "Alex"},
		models.Child{FirebaseUID: "c2", ParentFirebaseUID: "p2", Name: "Alex"},
	)

	child, err := repo.FindByParentAndName("p2", "  alex ")
	require.NoError(t, err)
	assert.Equal(t, "c2", child.FirebaseUID)

	_, err = repo.FindByParentAndName("p1", "Sam")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestParentRepositoryCountByCode(t *testing.T) {
	repo := NewParentRepository(models.Parent{FirebaseUID: "p1", Code: "1234"})
	require.NoError(t, repo.Save(models.Parent{FirebaseUID: "p2", Code: "1234"}))

	var count int64
	require.NoError(t, repo.CountByCode("1234", &count))
	assert.EqualValues(t, 2, count)
	require.NoError(t, repo.CountByCode("9999", &count))
	assert.EqualValues(t, 0, count)
}

func TestChoreRepositoryListByChildNewestFirst(t *testing.T) {
	repo := NewChoreRepository()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(models.Chore{ID: "a", ChildID: "c1", CreatedAt: base}))
	require.NoError(t, repo.Save(models.Chore{ID: "b", ChildID: "c1", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Save(models.Chore{ID: "c", ChildID: "c2", CreatedAt: base}))

	chores, err := repo.ListByChild("c1")
	require.NoError(t, err)
	require.Len(t, chores, 2)
	assert.Equal(t, "b", chores[0].ID)
}
