package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitbowl/fruitbowl/internal/card"
	"github.com/fruitbowl/fruitbowl/internal/game"
	"github.com/fruitbowl/fruitbowl/internal/randutil"
	"github.com/fruitbowl/fruitbowl/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestSession(t *testing.T, st store.Store, seed int64) (*Session, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	sess := New(st, testLogger(),
		WithClock(mock),
		WithRNG(randutil.New(seed)),
	)
	return sess, mock
}

// fullRoom seats four sessions in one room over a shared store and returns
// them host-first
func fullRoom(t *testing.T, st store.Store) []*Session {
	t.Helper()
	ctx := context.Background()

	host, _ := newTestSession(t, st, 1)
	created, err := host.Create(ctx, "Host")
	require.NoError(t, err)

	sessions := []*Session{host}
	for i, name := range []string{"Beth", "Carol", "Dave"} {
		sess, _ := newTestSession(t, st, int64(i+2))
		_, err := sess.Join(ctx, created.RoomCode, name)
		require.NoError(t, err)
		sessions = append(sessions, sess)
	}
	return sessions
}

func TestCreatePersistsRoom(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	assert.True(t, sess.InRoom())
	assert.True(t, sess.IsHost())
	assert.Equal(t, created.Players[0].ID, sess.PlayerID())

	persisted, err := mem.Load(ctx, created.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, created, persisted)
}

func TestJoinUnknownRoom(t *testing.T) {
	sess, _ := newTestSession(t, store.NewMemory(), 1)

	_, err := sess.Join(context.Background(), "0000", "Beth")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, sess.InRoom())
}

func TestJoinFifthPlayerRejected(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)
	code := sessions[0].State().RoomCode

	late, _ := newTestSession(t, mem, 9)
	_, err := late.Join(ctx, code, "Eve")
	assert.ErrorIs(t, err, game.ErrRoomFull)
	assert.False(t, late.InRoom())

	persisted, err := mem.Load(ctx, code)
	require.NoError(t, err)
	assert.Len(t, persisted.Players, game.MaxPlayers)
}

func TestStartNeedsFullRoom(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	_, err = sess.Start(ctx)
	assert.ErrorIs(t, err, game.ErrNotEnoughPlayers)

	// Neither the local nor the persisted state moved
	assert.Equal(t, created.LastUpdate, sess.State().LastUpdate)
	persisted, err := mem.Load(ctx, created.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, created, persisted)
}

func TestStartDealsFullDeck(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)

	started, err := sessions[0].Start(ctx)
	require.NoError(t, err)

	assert.True(t, started.Started)
	assert.Equal(t, 0, started.CurrentPlayer)
	for _, p := range started.Players {
		assert.Len(t, p.Cards, card.HandSize)
	}

	persisted, err := mem.Load(ctx, started.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, started, persisted)
}

func TestPassCardUpdatesSharedState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)
	host := sessions[0]

	started, err := host.Start(ctx)
	require.NoError(t, err)
	require.True(t, host.IsMyTurn())

	next, err := host.PassCard(ctx, 0, 1)
	require.NoError(t, err)

	assert.Len(t, next.Players[0].Cards, card.HandSize-1)
	assert.Len(t, next.Players[1].Cards, card.HandSize+1)
	assert.Equal(t, 1, next.CurrentPlayer)
	assert.False(t, host.IsMyTurn())
	assert.Greater(t, next.LastUpdate, started.LastUpdate)

	persisted, err := mem.Load(ctx, next.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, next, persisted)
}

func TestTimestampsIncreaseUnderFrozenClock(t *testing.T) {
	// The mock clock never moves here, so strictly increasing timestamps
	// must come from the logical bump alone
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)

	persisted, err := mem.Load(ctx, sessions[0].State().RoomCode)
	require.NoError(t, err)
	prev := persisted.LastUpdate

	started, err := sessions[0].Start(ctx)
	require.NoError(t, err)
	assert.Greater(t, started.LastUpdate, prev)

	passed, err := sessions[0].PassCard(ctx, 0, 1)
	require.NoError(t, err)
	assert.Greater(t, passed.LastUpdate, started.LastUpdate)
}

func TestRefreshAdoptsNewerState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	changes := make(chan game.State, 8)
	sess.OnStateChange(func(st game.State) { changes <- st })

	// Another client's write lands in the store with a later timestamp
	newer := created.Clone()
	newer.Players = append(newer.Players, game.Player{ID: "player_external", Name: "Beth"})
	newer.LastUpdate = created.LastUpdate + 1
	require.NoError(t, mem.Save(ctx, newer))

	sess.Refresh(ctx)

	assert.Equal(t, newer, sess.State())
	select {
	case got := <-changes:
		assert.Equal(t, newer, got)
	default:
		t.Fatal("Expected a state change notification")
	}
}

func TestRefreshIgnoresOlderState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	changes := make(chan game.State, 8)
	sess.OnStateChange(func(st game.State) { changes <- st })

	// Equal timestamp must not replace local state either
	stale := created.Clone()
	stale.Players[0].Name = "Imposter"
	require.NoError(t, mem.Save(ctx, stale))

	sess.Refresh(ctx)

	assert.Equal(t, "Host", sess.State().Players[0].Name)
	select {
	case <-changes:
		t.Fatal("Stale state must not trigger a notification")
	default:
	}
}

func TestRefreshStopsAfterGameOver(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	over := created.Clone()
	over.Over = true
	over.WinnerID = created.Players[0].ID
	over.LastUpdate = created.LastUpdate + 1
	require.NoError(t, mem.Save(ctx, over))
	sess.Refresh(ctx)
	require.True(t, sess.State().Over)

	// Later writes no longer reach a finished session
	afterwards := over.Clone()
	afterwards.WinnerID = "player_someoneelse"
	afterwards.LastUpdate = over.LastUpdate + 1
	require.NoError(t, mem.Save(ctx, afterwards))
	sess.Refresh(ctx)

	assert.Equal(t, created.Players[0].ID, sess.State().WinnerID)
}

func TestRefreshOutsideRoomIsNoOp(t *testing.T) {
	sess, _ := newTestSession(t, store.NewMemory(), 1)
	sess.Refresh(context.Background())
	assert.False(t, sess.InRoom())
}

func TestRunAdoptsOnTick(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mem := store.NewMemory()
	mock := quartz.NewMock(t)
	sess := New(mem, testLogger(),
		WithClock(mock),
		WithRNG(randutil.New(1)),
	)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	changes := make(chan game.State, 8)
	sess.OnStateChange(func(st game.State) { changes <- st })

	trap := mock.Trap().NewTicker("sync")
	defer trap.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sess.Run(runCtx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	newer := created.Clone()
	newer.Players = append(newer.Players, game.Player{ID: "player_external", Name: "Beth"})
	newer.LastUpdate = created.LastUpdate + 1
	require.NoError(t, mem.Save(ctx, newer))

	mock.Advance(DefaultPollInterval).MustWait(ctx)

	select {
	case got := <-changes:
		assert.Equal(t, newer, got)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for the sync loop to adopt the newer state")
	}

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestLeaveLastPlayerClearsRoom(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, _ := newTestSession(t, mem, 1)

	created, err := sess.Create(ctx, "Host")
	require.NoError(t, err)

	require.NoError(t, sess.Leave(ctx))

	assert.False(t, sess.InRoom())
	assert.Empty(t, sess.PlayerID())
	_, err = mem.Load(ctx, created.RoomCode)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLeaveRewritesRoomForOthers(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)
	code := sessions[0].State().RoomCode
	leaverID := sessions[1].PlayerID()

	require.NoError(t, sessions[1].Leave(ctx))

	persisted, err := mem.Load(ctx, code)
	require.NoError(t, err)
	assert.Len(t, persisted.Players, 3)
	_, found := persisted.FindPlayer(leaverID)
	assert.False(t, found)
}

func TestLeaveOutsideRoomIsNoOp(t *testing.T) {
	sess, _ := newTestSession(t, store.NewMemory(), 1)
	assert.NoError(t, sess.Leave(context.Background()))
}

func TestPassToNextWrapsSeating(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sessions := fullRoom(t, mem)

	_, err := sessions[0].Start(ctx)
	require.NoError(t, err)

	next, err := sessions[0].PassToNext(ctx, 0)
	require.NoError(t, err)

	// Host sits at seat 0, so "next" is seat 1
	assert.Len(t, next.Players[1].Cards, card.HandSize+1)
	assert.Equal(t, 1, next.CurrentPlayer)
}
