package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

func TestDefaultCatalogResolvesEveryLanguage(t *testing.T) {
	c := Default()
	for _, lang := range model.Languages() {
		labels := c.Lookup(lang)
		assert.Empty(t, firstEmpty(labels), lang)
	}
	assert.Equal(t, "跨境电商", c.Lookup(model.LanguageZh).TopicLabel(model.TopicEcommerce))
	assert.Equal(t, "AI Technology", c.Lookup(model.LanguageEn).TopicLabel(model.TopicAI))
}

func TestNewFailsFastOnIncompleteTables(t *testing.T) {
	en := Default().Lookup(model.LanguageEn)

	_, err := New(map[model.Language]Labels{model.LanguageEn: en})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zh"`)

	broken := en
	broken.Impact = ""
	_, err = New(map[model.Language]Labels{model.LanguageEn: en, model.LanguageZh: broken})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Impact")

	_, err = New(map[model.Language]Labels{model.LanguageEn: en, model.LanguageZh: en, "fr": en})
	assert.Error(t, err)
}

func TestLookupPanicsOnUnknownLanguage(t *testing.T) {
	assert.Panics(t, func() { Default().Lookup("ja") })
}
