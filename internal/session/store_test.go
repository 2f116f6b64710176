package session

import (
	"testing"

	"daxforge/domain/cleaning"
	"daxforge/domain/core"
	"daxforge/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedProfile(name string) *profile.FileProfile {
	return &profile.FileProfile{
		FileName:    name,
		RowCount:    10,
		ColumnCount: 1,
		Columns: []profile.ColumnStats{
			{Name: "amount", DataType: profile.TypeNumber, MissingValues: 2, UniqueValues: 7},
		},
		Version:    1,
		ProfiledAt: core.Now(),
	}
}

func TestStoreSessionLifecycle(t *testing.T) {
	store := NewStore()

	sess := store.CreateSession()
	assert.NotEmpty(t, sess.ID)

	// EnsureSession returns the existing session for a known ID
	same := store.EnsureSession(sess.ID)
	assert.Equal(t, sess.ID, same.ID)

	// and mints one for an unknown ID
	other := store.EnsureSession(core.SessionID("frontend-generated"))
	assert.Equal(t, core.SessionID("frontend-generated"), other.ID)

	store.RemoveSession(sess.ID)
	_, err := store.FileStates(sess.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestStoreAddFileRequiresSession(t *testing.T) {
	store := NewStore()

	_, err := store.AddFile(core.SessionID("missing"), "a.csv")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestStoreFileStatesKeepUploadOrder(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()

	for _, name := range []string{"one.csv", "two.csv", "three.csv"} {
		_, err := store.AddFile(sess.ID, name)
		require.NoError(t, err)
	}

	states, err := store.FileStates(sess.ID)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "one.csv", states[0].Name)
	assert.Equal(t, "two.csv", states[1].Name)
	assert.Equal(t, "three.csv", states[2].Name)
	assert.Equal(t, StatusPending, states[0].Status)
}

func TestStoreRemoveFile(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)

	require.NoError(t, store.RemoveFile(sess.ID, fileID))
	assert.ErrorIs(t, store.RemoveFile(sess.ID, fileID), core.ErrFileNotFound)

	states, err := store.FileStates(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestStoreProfileReturnsDeepCopy(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)
	require.NoError(t, store.SetProfile(sess.ID, fileID, storedProfile("a.csv")))

	p1, err := store.Profile(sess.ID, fileID)
	require.NoError(t, err)
	p1.Columns[0].MissingValues = 999

	p2, err := store.Profile(sess.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Columns[0].MissingValues)
}

func TestStoreProfileNotReady(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)

	_, err = store.Profile(sess.ID, fileID)
	assert.ErrorIs(t, err, core.ErrProfileNotFound)
}

func TestStoreStageSelectionRequiresProfile(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)

	err = store.StageSelection(sess.ID, fileID, "amount", cleaning.RemoveRows{})
	assert.ErrorIs(t, err, core.ErrFileNotReady)
}

func TestStoreStageSelectionReplacesPrior(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)
	require.NoError(t, store.SetProfile(sess.ID, fileID, storedProfile("a.csv")))

	require.NoError(t, store.StageSelection(sess.ID, fileID, "amount", cleaning.RemoveRows{}))
	require.NoError(t, store.StageSelection(sess.ID, fileID, "amount", cleaning.FillMean{}))

	kinds, err := store.Selections(sess.ID, fileID)
	require.NoError(t, err)
	require.Len(t, kinds, 1)
	assert.Equal(t, cleaning.ActionFillMean, kinds["amount"])

	require.NoError(t, store.UnstageSelection(sess.ID, fileID, "amount"))
	kinds, err = store.Selections(sess.ID, fileID)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}

func TestStoreApplyCleaningIsAtomicAndClearsSelections(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)
	require.NoError(t, store.SetProfile(sess.ID, fileID, storedProfile("a.csv")))
	require.NoError(t, store.StageSelection(sess.ID, fileID, "amount", cleaning.RemoveRows{}))

	updated, err := store.ApplyCleaning(sess.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.RowCount)
	assert.Equal(t, 2, updated.Version)

	// Selections are consumed by the apply
	kinds, err := store.Selections(sess.ID, fileID)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	// The committed profile is the applied one
	current, err := store.Profile(sess.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, 8, current.RowCount)
	assert.Equal(t, 2, current.Version)
}

func TestStoreAttachInsightsVersionGate(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()
	fileID, err := store.AddFile(sess.ID, "a.csv")
	require.NoError(t, err)
	require.NoError(t, store.SetProfile(sess.ID, fileID, storedProfile("a.csv")))

	insights := &profile.AIInsights{
		SuggestedKPIs:      []string{"Total amount"},
		DataQualitySummary: "Two missing cells.",
	}

	// Matching version: attached
	applied, err := store.AttachInsights(sess.ID, fileID, 1, insights)
	require.NoError(t, err)
	assert.True(t, applied)

	p, err := store.Profile(sess.ID, fileID)
	require.NoError(t, err)
	require.NotNil(t, p.AIInsights)
	assert.Equal(t, insights.DataQualitySummary, p.AIInsights.DataQualitySummary)
	// Attaching insights decorates; it does not reshape the profile
	assert.Equal(t, 1, p.Version)

	// A cleaning apply moves the version past the insights target
	require.NoError(t, store.StageSelection(sess.ID, fileID, "amount", cleaning.FillMode{}))
	_, err = store.ApplyCleaning(sess.ID, fileID)
	require.NoError(t, err)

	applied, err = store.AttachInsights(sess.ID, fileID, 1, &profile.AIInsights{
		SuggestedKPIs:      []string{"stale"},
		DataQualitySummary: "stale",
	})
	require.NoError(t, err)
	assert.False(t, applied, "stale insights must be dropped")

	p, err = store.Profile(sess.ID, fileID)
	require.NoError(t, err)
	require.NotNil(t, p.AIInsights)
	assert.NotEqual(t, "stale", p.AIInsights.DataQualitySummary)
}

func TestStoreProfilesReturnsCompletedInUploadOrder(t *testing.T) {
	store := NewStore()
	sess := store.CreateSession()

	firstID, err := store.AddFile(sess.ID, "first.csv")
	require.NoError(t, err)
	_, err = store.AddFile(sess.ID, "pending.csv")
	require.NoError(t, err)
	thirdID, err := store.AddFile(sess.ID, "third.csv")
	require.NoError(t, err)

	require.NoError(t, store.SetProfile(sess.ID, thirdID, storedProfile("third.csv")))
	require.NoError(t, store.SetProfile(sess.ID, firstID, storedProfile("first.csv")))

	profiles, err := store.Profiles(sess.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "first.csv", profiles[0].FileName)
	assert.Equal(t, "third.csv", profiles[1].FileName)
}
