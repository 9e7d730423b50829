package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/roach88/devpolicy/internal/settings"
)

// HistorySuite exercises the settings audit trail across reopens.
type HistorySuite struct {
	suite.Suite
	path  string
	store *Store
	ctx   context.Context
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func (s *HistorySuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "history.db")
	st, err := Open(s.path)
	s.Require().NoError(err)
	s.store = st
}

func (s *HistorySuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *HistorySuite) reopen() {
	s.Require().NoError(s.store.Close())
	st, err := Open(s.path)
	s.Require().NoError(err)
	s.store = st
}

func (s *HistorySuite) TestSourcesRecorded() {
	_, err := s.store.SeedDefaults(s.ctx, settings.Values{settings.AggressiveIdle: false})
	s.Require().NoError(err)
	_, err = s.store.SetSetting(s.ctx, settings.AggressiveIdle, true, SourceHTTP)
	s.Require().NoError(err)
	_, err = s.store.SetSetting(s.ctx, settings.ExtremeIdle, true, SourceCLI)
	s.Require().NoError(err)

	history, err := s.store.History(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(history, 3)

	s.Equal(SourceDefault, history[0].Source)
	s.False(history[0].Value)
	s.Equal(SourceHTTP, history[1].Source)
	s.True(history[1].Value)
	s.Equal(SourceCLI, history[2].Source)
	s.Equal(settings.ExtremeIdle, history[2].Key)
}

func (s *HistorySuite) TestSeqContinuesAfterReopen() {
	seq, err := s.store.SetSetting(s.ctx, settings.ExtremeIdle, true, SourceCLI)
	s.Require().NoError(err)
	s.Equal(int64(1), seq)

	s.reopen()

	seq, err = s.store.SetSetting(s.ctx, settings.ExtremeIdle, false, SourceCLI)
	s.Require().NoError(err)
	s.Equal(int64(2), seq)

	got, err := s.store.GetSetting(s.ctx, settings.ExtremeIdle)
	s.Require().NoError(err)
	s.False(got.Value)
	s.Equal(int64(2), got.Seq)
}

func (s *HistorySuite) TestSeedDoesNotOverwriteAfterReopen() {
	_, err := s.store.SetSetting(s.ctx, settings.HideIdleFromPrivilegedApp, true, SourceCLI)
	s.Require().NoError(err)

	s.reopen()

	seeded, err := s.store.SeedDefaults(s.ctx, settings.Values{
		settings.HideIdleFromPrivilegedApp: false,
		settings.AggressiveIdle:            true,
	})
	s.Require().NoError(err)
	s.Equal([]settings.Key{settings.AggressiveIdle}, seeded)
	s.True(s.store.Settings().HideIdleFromPrivilegedApp())
	s.True(s.store.Settings().AggressiveIdleEnabled())
}
