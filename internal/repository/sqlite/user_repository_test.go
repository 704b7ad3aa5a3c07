package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
	"github.com/vytor/quizflash/internal/repository/sqlite"
	"github.com/vytor/quizflash/internal/testutil"
)

type UserRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.UserRepository
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewUserRepository(s.db)
}

func (s *UserRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *UserRepositorySuite) TestCreateAndLookup() {
	ctx := context.Background()
	err := s.repo.Create(ctx, models.User{ID: "u1", Email: " Ada@Example.com", Name: "Ada", PasswordHash: "hash", CreatedAt: time.Now()})
	s.Require().NoError(err)

	byEmail, err := s.repo.GetByEmail(ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(byEmail)
	s.Assert().Equal("u1", byEmail.ID)
	s.Assert().Equal("ada@example.com", byEmail.Email)
	s.Assert().Equal("hash", byEmail.PasswordHash)

	byID, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal("Ada", byID.Name)
}

func (s *UserRepositorySuite) TestCreate_DuplicateEmail() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, models.User{ID: "u1", Email: "ada@example.com", PasswordHash: "h"}))

	err := s.repo.Create(ctx, models.User{ID: "u2", Email: "ADA@example.com", PasswordHash: "h"})
	s.Assert().ErrorIs(err, repository.ErrDuplicate)
}

func (s *UserRepositorySuite) TestGet_Missing() {
	u, err := s.repo.GetByEmail(context.Background(), "nobody@example.com")
	s.Assert().NoError(err)
	s.Assert().Nil(u)
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}
