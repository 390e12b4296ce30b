package hxfeed

import (
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxfeed/lib/dom"
)

func TestDefaultTemplates_Render(t *testing.T) {
	tests := []struct {
		name     string
		class    string
		contains []string
	}{
		{TemplateFeed, ClassFeed, []string{"." + ClassControls, "." + ClassEntries}},
		{TemplateResults, "tf-results", []string{".tf-results-count"}},
		{TemplatePager, ClassPager, []string{"." + ClassPagerNext, "." + ClassPagerPrev, ".tf-pager-status"}},
		{TemplateEntry, ClassEntry, []string{"img[data-src]", "[data-href]", ".tf-entry-title"}},
	}

	templates := DefaultTemplates()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := dom.RenderComponent(context.Background(), templates[tt.name](nil))
			require.NoError(t, err)
			assert.True(t, el.HasClass(tt.class))
			for _, sel := range tt.contains {
				assert.Equal(t, 1, el.Find(sel).Length(), sel)
			}
		})
	}
}

func TestEntryTemplate_BindsStreamEntry(t *testing.T) {
	el, err := dom.RenderComponent(context.Background(), EntryTemplate(nil))
	require.NoError(t, err)

	// The element itself is not bound; only its descendants are scanned.
	_, marked := el.Attr("data-context")
	assert.False(t, marked)
	assert.Equal(t, 6, el.Find(`[data-context="streamEntry"]`).Length())
}

func TestMergeTemplates(t *testing.T) {
	custom := Template(func(any) templ.Component { return FeedTemplate(nil) })
	merged := mergeTemplates(map[string]Template{TemplateEntry: custom, TemplatePager: nil})

	assert.Len(t, merged, 4)
	assert.NotNil(t, merged[TemplatePager])
}

func TestCloneContent(t *testing.T) {
	content := cloneContent(map[string]any{"next": "More", "extra": 1})

	assert.Equal(t, "More", content["next"])
	assert.Equal(t, "Previous", content["previous"])
	assert.Equal(t, 1, content["extra"])
	assert.Equal(t, DefaultContent(), cloneContent(nil))
}

func TestPagerTransform_BindsControls(t *testing.T) {
	l := New(testURL, WithRegistry(NewRegistry()))
	el, err := dom.RenderComponent(context.Background(), PagerTemplate(l))
	require.NoError(t, err)

	PagerTransform(l, el)

	assert.Equal(t, 1, l.Listeners().Count(el.Find("."+ClassPagerNext), ClickEvent))
	assert.Equal(t, 1, l.Listeners().Count(el.Find("."+ClassPagerPrev), ClickEvent))
}

func TestMergeTransforms_NilIsIdentity(t *testing.T) {
	merged := mergeTransforms(map[string]Transform{TemplatePager: nil})

	el, err := dom.ParseFragment(`<div class="x"></div>`)
	require.NoError(t, err)
	assert.Same(t, el, merged[TemplatePager](nil, el))
	assert.NotNil(t, merged[TemplateEntry])
}
