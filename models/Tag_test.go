package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateTagsDedupesAndKeepsOrder(t *testing.T) {
	db := setupTestDB(t)

	tags, err := FindOrCreateTags(db, []string{"Go", "dragons", "go", "  dragons "})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, "dragons", tags[1].Name)
}

func TestFindOrCreateTagsReusesExisting(t *testing.T) {
	db := setupTestDB(t)

	first, err := FindOrCreateTags(db, []string{"dragons"})
	require.NoError(t, err)
	second, err := FindOrCreateTags(db, []string{"dragons"})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)

	var count int64
	require.NoError(t, db.Model(&Tag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListTagNamesAlphabetical(t *testing.T) {
	db := setupTestDB(t)

	_, err := FindOrCreateTags(db, []string{"zeppelins", "aardvarks", "dragons"})
	require.NoError(t, err)

	names, err := ListTagNames(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"aardvarks", "dragons", "zeppelins"}, names)
}
