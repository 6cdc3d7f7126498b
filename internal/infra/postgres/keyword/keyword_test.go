package infra_postgres_keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type KeywordInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	mock   sqlmock.Sqlmock
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &resources{
		mock:   mock,
		driver: New(sqlx.NewDb(db, "sqlmock")),
		ctx:    context.Background(),
	}
}

func (s *KeywordInfraUnitSuite) TestDraw(t provider.T) {
	t.Parallel()

	t.Run("Should map rows into keywords", func(t provider.T) {
		r := initResources(t)
		rows := sqlmock.NewRows([]string{"keyword_type", "keyword_name", "keyword_alias"}).
			AddRow("artist", "Red Velvet", "레드벨벳| RV |").
			AddRow("제목", " 봄날 ", nil)
		r.mock.ExpectQuery("SELECT keyword_type, keyword_name, keyword_alias").
			WithArgs(2).
			WillReturnRows(rows)

		keywords, err := r.driver.Draw(r.ctx, 2)

		assert.NoError(t, err)
		assert.Equal(t, []model.Keyword{
			{Type: model.KeywordByPerformer, Name: "Red Velvet", Aliases: []string{"레드벨벳", "RV"}},
			{Type: model.KeywordByTitle, Name: "봄날"},
		}, keywords)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})

	t.Run("Should propagate query errors", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectQuery("SELECT keyword_type").WillReturnError(errors.New("connection refused"))

		_, err := r.driver.Draw(r.ctx, 1)

		assert.Error(t, err)
	})
}

func TestKeywordInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(KeywordInfraUnitSuite))
}
