package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
	"github.com/vytor/quizflash/internal/repository/sqlite"
	"github.com/vytor/quizflash/internal/testutil"
)

type SettingsRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SettingsRepository
}

func (s *SettingsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSettingsRepository(s.db)
}

func (s *SettingsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SettingsRepositorySuite) TestGet_Missing() {
	got, err := s.repo.Get(context.Background(), "u1")
	s.Assert().NoError(err)
	s.Assert().Nil(got)
}

func (s *SettingsRepositorySuite) TestSaveAndOverwrite() {
	ctx := context.Background()
	settings := models.DefaultSettings()
	s.Require().NoError(s.repo.Save(ctx, "u1", settings))

	got, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(settings, *got)

	settings.Subject = "Physics"
	settings.AutoSubmit = false
	settings.SoundEffects = true
	settings.QuestionCount = 12
	s.Require().NoError(s.repo.Save(ctx, "u1", settings))

	got, err = s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(settings, *got)
}

func TestSettingsRepositorySuite(t *testing.T) {
	suite.Run(t, new(SettingsRepositorySuite))
}
