package keywordmock

import (
	"context"
	"math/rand"
	"sync"

	"github.com/humanbelnik/singalong/core/internal/model"
)

// Pool serves keywords from memory when no database is configured.
type Pool struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	keywords []model.Keyword
}

func New(rnd *rand.Rand, keywords ...model.Keyword) *Pool {
	if len(keywords) == 0 {
		keywords = Default()
	}
	return &Pool{rnd: rnd, keywords: keywords}
}

// Draw returns up to n distinct keywords in random order.
func (p *Pool) Draw(ctx context.Context, n int) ([]model.Keyword, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.rnd.Perm(len(p.keywords))
	if n < len(idx) {
		idx = idx[:n]
	}
	out := make([]model.Keyword, 0, len(idx))
	for _, i := range idx {
		out = append(out, p.keywords[i])
	}
	return out, nil
}

func Default() []model.Keyword {
	return []model.Keyword{
		{Type: model.KeywordByPerformer, Name: "Day6", Aliases: []string{"데이식스", "DAY6"}},
		{Type: model.KeywordByPerformer, Name: "BLACKPINK", Aliases: []string{"블랙핑크", "Black Pink"}},
		{Type: model.KeywordByPerformer, Name: "Red Velvet", Aliases: []string{"레드벨벳"}},
		{Type: model.KeywordByPerformer, Name: "IU", Aliases: []string{"아이유"}},
		{Type: model.KeywordByPerformer, Name: "BTS", Aliases: []string{"방탄소년단"}},
		{Type: model.KeywordByPerformer, Name: "윤미래", Aliases: []string{"Yoon Mirae"}},
		{Type: model.KeywordByPerformer, Name: "버스커 버스커", Aliases: []string{"Busker Busker"}},
		{Type: model.KeywordByPerformer, Name: "BIGBANG", Aliases: []string{"빅뱅"}},
		{Type: model.KeywordByTitle, Name: "봄날"},
		{Type: model.KeywordByTitle, Name: "벚꽃 엔딩"},
		{Type: model.KeywordByTitle, Name: "좋은 날"},
		{Type: model.KeywordByTitle, Name: "Psycho"},
	}
}
