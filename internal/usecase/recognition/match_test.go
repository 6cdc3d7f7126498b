package usecase_recognition

import (
	"testing"

	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MatchSuite struct {
	suite.Suite
}

func (s *MatchSuite) TestMatch(t provider.T) {
	t.Parallel()

	byTitle := model.Keyword{Type: model.KeywordByTitle, Name: "Psycho"}

	testCases := []struct {
		name      string
		keyword   model.Keyword
		title     string
		performer string
		expected  bool
	}{
		{name: "exact performer", keyword: redVelvet(), performer: "Red Velvet", expected: true},
		{name: "performer case and parenthetical", keyword: redVelvet(), performer: "RED VELVET (레드벨벳)", expected: true},
		{name: "alias substring", keyword: redVelvet(), performer: "레드벨벳 공식", expected: true},
		{name: "collaboration cut", keyword: redVelvet(), performer: "Red Velvet feat. Someone", expected: true},
		{name: "ampersand cut", keyword: redVelvet(), performer: "Red Velvet & aespa", expected: true},
		{name: "other performer", keyword: redVelvet(), performer: "aespa", expected: false},
		{name: "empty performer", keyword: redVelvet(), performer: "", expected: false},
		{name: "title substring", keyword: byTitle, title: "Psycho (Remix)", expected: true},
		{name: "title case-insensitive", keyword: byTitle, title: "PSYCHO", expected: true},
		{name: "title missing", keyword: byTitle, title: "Bad Boy", performer: "Psycho", expected: false},
		{name: "empty keyword", keyword: model.Keyword{Type: model.KeywordByPerformer}, performer: "x", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Match(tc.keyword, tc.title, tc.performer))
		})
	}
}

func (s *MatchSuite) TestNormalizePerformer(t provider.T) {
	t.Parallel()

	assert.Equal(t, "red velvet", NormalizePerformer("RED VELVET (레드벨벳)"))
	assert.Equal(t, "iu", NormalizePerformer("IU / 아이유"))
	assert.Equal(t, "zico", NormalizePerformer("ZICO with 팬텀"))
	assert.Equal(t, "withus", NormalizePerformer("WITHUS"))
}

func (s *MatchSuite) TestParseResultTitle(t provider.T) {
	t.Parallel()

	testCases := []struct {
		raw       string
		title     string
		performer string
		ok        bool
	}{
		{raw: "벚꽃 엔딩 - 버스커 버스커 가사", title: "벚꽃 엔딩", performer: "버스커 버스커", ok: true},
		{raw: "Psycho / Red Velvet - 벅스", title: "Psycho", performer: "Red Velvet", ok: true},
		{raw: "봄날 (방탄소년단) lyrics", title: "봄날", performer: "방탄소년단", ok: true},
		{raw: "just a blog post", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t provider.T) {
			title, performer, ok := parseResultTitle(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.title, title)
			assert.Equal(t, tc.performer, performer)
		})
	}
}

func (s *MatchSuite) TestPickSong(t provider.T) {
	t.Parallel()

	t.Run("Should ignore panels that are not songs", func(t provider.T) {
		title, performer := pickSong(model.SearchResult{
			Panel: &model.KnowledgePanel{Type: "Musical artist", Title: "Red Velvet"},
			Organic: []model.OrganicResult{
				{Title: "Bad Boy - Red Velvet", Link: "https://blog.example.com"},
				{Title: "Psycho - Red Velvet 가사", Link: "https://music.bugs.co.kr/1"},
			},
		}, officialDomains)

		assert.Equal(t, "Psycho", title, "official results come first")
		assert.Equal(t, "Red Velvet", performer)
	})

	t.Run("Should complete a partial panel from organic results", func(t provider.T) {
		title, performer := pickSong(model.SearchResult{
			Panel:   &model.KnowledgePanel{Type: "single", Title: "Feel My Rhythm"},
			Organic: []model.OrganicResult{{Title: "Feel My Rhythm - Red Velvet"}},
		}, officialDomains)

		assert.Equal(t, "Feel My Rhythm", title)
		assert.Equal(t, "Red Velvet", performer)
	})

	t.Run("Should build bounded queries", func(t provider.T) {
		assert.Empty(t, searchQuery("   "))
		long := make([]rune, 150)
		for i := range long {
			long[i] = '가'
		}
		q := searchQuery(string(long))
		assert.Equal(t, maxQueryLen+len([]rune(querySuffix)), len([]rune(q)))
	})
}

func TestMatchSuite(t *testing.T) {
	suite.RunSuite(t, new(MatchSuite))
}
