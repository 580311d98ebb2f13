package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBPlayers(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreatePlayer("ace", "hash")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = db.CreatePlayer("ace", "other")
	assert.Error(t, err, "usernames are unique")

	p, err := db.GetPlayerByUsername("ace")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "hash", p.PassHash)

	p, err = db.GetPlayerByUsername("ghost")
	assert.NoError(t, err)
	assert.Nil(t, p)

	exists, err := db.UsernameExists("ace")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDBSettings(t *testing.T) {
	db := openTestDB(t)

	assert.Empty(t, db.GetSetting("k"))
	require.NoError(t, db.SetSetting("k", "v1"))
	require.NoError(t, db.SetSetting("k", "v2"))
	assert.Equal(t, "v2", db.GetSetting("k"))
}

func TestDBLeaderboard(t *testing.T) {
	db := openTestDB(t)

	runs := []RunRow{
		{Pilot: "slow", SessionID: "s1", Level: 2, Score: 30, Duration: 90 * time.Second, Outcome: OutcomeDestroyed},
		{Pilot: "best", SessionID: "s1", Level: 3, Score: 50, Duration: 60 * time.Second, Outcome: OutcomeDestroyed},
		{Pilot: "fast", SessionID: "s2", Level: 2, Score: 30, Duration: 45 * time.Second, Outcome: OutcomeAbandoned},
		{Pilot: "low", SessionID: "s2", Level: 0, Score: 1, Duration: time.Second, Outcome: OutcomeDestroyed},
	}
	for _, r := range runs {
		_, err := db.RecordRun(r)
		require.NoError(t, err)
	}

	board, err := db.GetLeaderboard(3)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, LeaderboardEntry{Rank: 1, Pilot: "best", Score: 50, Level: 3, Duration: 60}, board[0])
	// equal score and level: shorter run ranks higher
	assert.Equal(t, "fast", board[1].Pilot)
	assert.Equal(t, "slow", board[2].Pilot)
	assert.Equal(t, 3, board[2].Rank)
}

func TestDBRunsForPlayer(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreatePlayer("ace", "hash")
	require.NoError(t, err)

	_, err = db.RecordRun(RunRow{PlayerID: id, Pilot: "ace", SessionID: "s", Level: 1, Score: 4, Duration: 1500 * time.Millisecond, Outcome: OutcomeDestroyed})
	require.NoError(t, err)
	_, err = db.RecordRun(RunRow{PlayerID: id, Pilot: "ace", SessionID: "s", Level: 2, Score: 9, Outcome: OutcomeAbandoned})
	require.NoError(t, err)
	_, err = db.RecordRun(RunRow{Pilot: "guest", SessionID: "s", Score: 99, Outcome: OutcomeDestroyed})
	require.NoError(t, err)

	got, err := db.RunsForPlayer(id, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Score, "newest first")
	assert.Equal(t, OutcomeAbandoned, got[0].Outcome)
	assert.Equal(t, 1500*time.Millisecond, got[1].Duration)
	assert.Equal(t, id, got[1].PlayerID)
}
