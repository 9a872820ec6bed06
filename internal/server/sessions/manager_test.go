package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoauthor/autoauthor/internal/common"
)

func newTestManager(lifetime, idleWarn time.Duration) (*Manager, *time.Time) {
	m := NewManager(lifetime, idleWarn)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManager_CreateAndStatus(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 15*time.Minute)

	r := m.Create("user1", "fp1")
	require.NotEmpty(t, r.ID)

	st, err := m.Status(r.ID)
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.False(t, st.Suspicious)
	assert.False(t, st.IdleWarning)
	assert.Equal(t, int64(0), st.IdleSeconds)
	assert.Equal(t, 30*time.Minute, st.TimeUntilExpiry)
}

func TestManager_IdleWarningAfterThreshold(t *testing.T) {
	m, now := newTestManager(30*time.Minute, 15*time.Minute)
	r := m.Create("user1", "fp1")

	*now = now.Add(16 * time.Minute)
	st, err := m.Status(r.ID)
	require.NoError(t, err)
	assert.True(t, st.IdleWarning)
	assert.Equal(t, int64(16*60), st.IdleSeconds)

	// activity resets the idle clock
	m.MarkActivity(r.ID)
	st, err = m.Status(r.ID)
	require.NoError(t, err)
	assert.False(t, st.IdleWarning)
}

func TestManager_ObserveDoesNotResetIdle(t *testing.T) {
	m, now := newTestManager(30*time.Minute, 15*time.Minute)
	r := m.Create("user1", "fp1")

	*now = now.Add(16 * time.Minute)
	_, err := m.Observe(r.ID, "fp1")
	require.NoError(t, err)

	st, err := m.Status(r.ID)
	require.NoError(t, err)
	assert.True(t, st.IdleWarning, "a status poll is not user activity")
	assert.Equal(t, int64(1), st.RequestCount)
}

func TestManager_FingerprintChangeMarksSuspicious(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 15*time.Minute)
	r := m.Create("user1", Fingerprint("ua-a", "1.2.3.4"))

	_, err := m.Observe(r.ID, Fingerprint("ua-b", "5.6.7.8"))
	require.NoError(t, err)

	st, err := m.Status(r.ID)
	require.NoError(t, err)
	assert.True(t, st.Suspicious)
}

func TestManager_RefreshExtendsAndRevalidates(t *testing.T) {
	m, now := newTestManager(30*time.Minute, 15*time.Minute)
	r := m.Create("user1", "fp1")
	_, err := m.Observe(r.ID, "fp2")
	require.NoError(t, err)

	*now = now.Add(20 * time.Minute)
	require.NoError(t, m.Refresh(r.ID))

	st, err := m.Status(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, st.TimeUntilExpiry)
	assert.False(t, st.Suspicious, "refresh is the re-validation path")
}

func TestManager_Expiry(t *testing.T) {
	m, now := newTestManager(30*time.Minute, 15*time.Minute)
	r := m.Create("user1", "fp1")

	*now = now.Add(31 * time.Minute)
	_, err := m.Status(r.ID)
	assert.ErrorIs(t, err, common.ErrSessionExpired)

	// the record is gone after the first expired lookup
	_, err = m.Status(r.ID)
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestManager_DeleteAllForUser(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 15*time.Minute)
	a := m.Create("user1", "fp")
	b := m.Create("user1", "fp")
	c := m.Create("user2", "fp")

	n := m.DeleteAllForUser("user1", a.ID)
	assert.Equal(t, 1, n)

	_, err := m.Status(a.ID)
	assert.NoError(t, err)
	_, err = m.Status(b.ID)
	assert.ErrorIs(t, err, common.ErrNoSession)
	_, err = m.Status(c.ID)
	assert.NoError(t, err)
}

func TestManager_PurgeExpired(t *testing.T) {
	m, now := newTestManager(30*time.Minute, 15*time.Minute)
	m.Create("user1", "fp")
	m.Create("user2", "fp")

	*now = now.Add(time.Hour)
	assert.Equal(t, 2, m.PurgeExpired())
	assert.Equal(t, 0, m.PurgeExpired())
}
