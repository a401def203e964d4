package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

func src(title string) model.GroundingSource {
	return model.GroundingSource{Title: title, URI: "https://example.com/" + title}
}

func TestSourceTitles(t *testing.T) {
	tests := []struct {
		name  string
		items []model.TrendItem
		want  []string
	}{
		{
			name:  "empty input",
			items: nil,
			want:  []string{},
		},
		{
			name:  "items without sources",
			items: []model.TrendItem{{ID: "1"}, {ID: "2", Sources: []model.GroundingSource{}}},
			want:  []string{},
		},
		{
			name: "first seen order within one item",
			items: []model.TrendItem{{ID: "1", Sources: []model.GroundingSource{src("A"), src("B"), src("A")}}},
			want: []string{"A", "B"},
		},
		{
			name: "across items",
			items: []model.TrendItem{
				{ID: "1", Sources: []model.GroundingSource{src("Reuters")}},
				{ID: "2", Sources: []model.GroundingSource{src("TechCrunch"), src("Reuters")}},
				{ID: "3", Sources: []model.GroundingSource{src("36Kr")}},
			},
			want: []string{"Reuters", "TechCrunch", "36Kr"},
		},
		{
			name: "case sensitive",
			items: []model.TrendItem{{ID: "1", Sources: []model.GroundingSource{src("reuters"), src("Reuters")}}},
			want: []string{"reuters", "Reuters"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceTitles(tt.items))
		})
	}
}

func TestSourceTitlesIgnoresURI(t *testing.T) {
	items := []model.TrendItem{{ID: "1", Sources: []model.GroundingSource{
		{Title: "Bloomberg", URI: "https://bloomberg.com/a"},
		{Title: "Bloomberg", URI: "https://bloomberg.com/b"},
	}}}
	assert.Equal(t, []string{"Bloomberg"}, SourceTitles(items))
}
