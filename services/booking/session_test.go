package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"seabook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionOpensProviderSession(t *testing.T) {
	env := newTestEnv()

	session, err := env.svc.CreateSession(context.Background(), models.PassengerComposition{Adults: 2}, testCruise)
	require.NoError(t, err)

	assert.Equal(t, models.SessionCreated, session.State)
	assert.Equal(t, "handle-1", session.ProviderSessionHandle)
	assert.Equal(t, testCruise, session.CruiseReference)
	assert.WithinDuration(t, session.CreatedAt.Add(env.svc.SessionLifetime), session.ExpiresAt, time.Second)
	assert.Equal(t, 1, env.provider.openCalls)

	stored := env.sessions.stored(session.ID)
	assert.Equal(t, session.ID, stored.ID)
	cached, err := env.sessCache.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
}

func TestCreateSessionRejectsBadComposition(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateSession(context.Background(), models.PassengerComposition{Adults: 0}, testCruise)
	assert.True(t, HasCode(err, CodeInvalidState))

	_, err = env.svc.CreateSession(context.Background(), models.PassengerComposition{Adults: 1, Children: 2, ChildAges: []int{7}}, testCruise)
	assert.True(t, HasCode(err, CodeInvalidState))

	assert.Zero(t, env.provider.openCalls)
}

func TestCreateSessionUnknownCruise(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateSession(context.Background(), models.PassengerComposition{Adults: 2}, "CR-9999")
	assert.True(t, HasCode(err, CodeCruiseNotFound))
	assert.Zero(t, env.provider.openCalls)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.GetSession(context.Background(), "missing")
	assert.True(t, HasCode(err, CodeSessionNotFound))
}

func TestGetSessionFallsBackToDurableStore(t *testing.T) {
	env := newTestEnv()
	session := basketedSession("s1")
	env.sessions.sessions[session.ID] = session

	got, err := env.svc.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	// Cache-aside repopulate.
	cached, err := env.sessCache.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, models.SessionBasketed, cached.State)
}

func TestExpiredSessionIsTombstonedOnRead(t *testing.T) {
	env := newTestEnv()
	session := basketedSession("s1")
	session.State = models.SessionPriced
	session.ExpiresAt = time.Now().Add(-time.Minute)
	env.seedSession(session)

	_, err := env.svc.GetSession(context.Background(), "s1")
	assert.True(t, HasCode(err, CodeSessionExpired))

	stored := env.sessions.stored("s1")
	assert.Equal(t, models.SessionExpired, stored.State)
	assert.Equal(t, 1, env.sessCache.deletes)

	// A second read still reports expiry off the tombstone.
	_, err = env.svc.GetSession(context.Background(), "s1")
	assert.True(t, HasCode(err, CodeSessionExpired))
}

func TestExpiryWinsRaceWithMutation(t *testing.T) {
	env := newTestEnv()
	session := basketedSession("s1")
	session.State = models.SessionPriced
	session.ExpiresAt = time.Now().Add(-time.Second)
	env.seedSession(session)

	_, err := env.svc.SelectCabin(context.Background(), "s1", "BAL", "", "")
	assert.True(t, HasCode(err, CodeSessionExpired))

	stored := env.sessions.stored("s1")
	assert.Equal(t, models.SessionExpired, stored.State)
	assert.Zero(t, env.provider.addCalls)
}

func TestSessionLocksAreReleasedAfterMutation(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		env.seedSession(pricedSession(id))
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := env.svc.SelectCabin(context.Background(), id, "BAL", "", "")
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	assert.Zero(t, env.svc.locks.held())
}

func TestTerminalSessionRejectsMutation(t *testing.T) {
	env := newTestEnv()
	session := basketedSession("s1")
	session.State = models.SessionBooked
	env.seedSession(session)

	_, err := env.svc.SelectCabin(context.Background(), "s1", "BAL", "", "")
	assert.True(t, HasCode(err, CodeInvalidState))
	assert.Zero(t, env.provider.addCalls)
}
