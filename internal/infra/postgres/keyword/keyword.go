package infra_postgres_keyword

import (
	"context"
	"database/sql"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/jmoiron/sqlx"
)

const aliasSeparator = "|"

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type keywordDTO struct {
	Type  string         `db:"keyword_type"`
	Name  string         `db:"keyword_name"`
	Alias sql.NullString `db:"keyword_alias"`
}

// Draw returns up to n distinct random keywords.
func (d *Driver) Draw(ctx context.Context, n int) ([]model.Keyword, error) {
	query := `
		SELECT keyword_type, keyword_name, keyword_alias
		FROM keyword
		ORDER BY RANDOM()
		LIMIT $1
	`

	var rows []keywordDTO
	if err := d.db.SelectContext(ctx, &rows, query, n); err != nil {
		return nil, err
	}

	keywords := make([]model.Keyword, 0, len(rows))
	for _, r := range rows {
		keywords = append(keywords, r.toModel())
	}
	return keywords, nil
}

func (dto keywordDTO) toModel() model.Keyword {
	var aliases []string
	if dto.Alias.Valid {
		for _, a := range strings.Split(dto.Alias.String, aliasSeparator) {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
	}
	return model.Keyword{
		Type:    model.ParseKeywordType(dto.Type),
		Name:    strings.TrimSpace(dto.Name),
		Aliases: aliases,
	}
}
