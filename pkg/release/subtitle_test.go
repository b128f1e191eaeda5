package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSubtitle(t *testing.T) {
	tests := []struct {
		title string
		want  Subtitle
	}{
		{"[Group] 示例 - 05 [1080p][简体]", SubtitleSimplified},
		{"[Group] 示例 - 05 [简日双语]", SubtitleSimplified},
		{"[Group] 示例 - 05 [CHS]", SubtitleSimplified},
		{"[Group] 示例 - 05 [繁體]", SubtitleTraditional},
		{"[Group] 示例 - 05 [BIG5]", SubtitleTraditional},
		{"[Group] 示例 - 05 [cht]", SubtitleTraditional},
		{"[Group] 示例 - 05 [简繁内封字幕]", SubtitleBoth},
		{"[Group] 示例 - 05 [简体][繁体]", SubtitleBoth},
		{"[Group] 示例 - 05 [CHS_CHT]", SubtitleBoth},
		{"[Group] 示例 - 05 [ＣＨＳ]", SubtitleSimplified},
		{"[Group] Example - 05 [1080p]", SubtitleNone},
		{"[Group] MATCHS - 01", SubtitleNone},
		{"[Group] Yacht Club - 01", SubtitleNone},
		{"[Group] Big500 - 01", SubtitleNone},
		{"[Group] Example - 05 CHS 1080p", SubtitleSimplified},
		{"[Group] Example - 05 [CHS&CHT]", SubtitleBoth},
		{"", SubtitleNone},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSubtitle(tt.title))
		})
	}
}

func TestSelectByPriority(t *testing.T) {
	type version struct {
		name string
		sub  Subtitle
	}
	subOf := func(v version) Subtitle { return v.sub }
	candidates := []version{
		{"a", SubtitleTraditional},
		{"b", SubtitleBoth},
		{"c", SubtitleSimplified},
	}

	got, ok := SelectByPriority(candidates, subOf)
	assert.True(t, ok)
	assert.Equal(t, "c", got.name)

	got, ok = SelectByPriority(candidates, subOf, SubtitleBoth, SubtitleSimplified)
	assert.True(t, ok)
	assert.Equal(t, "b", got.name)

	_, ok = SelectByPriority(candidates[:1], subOf, SubtitleSimplified)
	assert.False(t, ok)

	_, ok = SelectByPriority(nil, subOf)
	assert.False(t, ok)
}

func TestChoosePreference(t *testing.T) {
	got, ok := ChoosePreference(map[Subtitle]int{SubtitleSimplified: 3, SubtitleBoth: 1})
	assert.True(t, ok)
	assert.Equal(t, SubtitleBoth, got)

	got, ok = ChoosePreference(map[Subtitle]int{SubtitleTraditional: 2, SubtitleSimplified: 1})
	assert.True(t, ok)
	assert.Equal(t, SubtitleSimplified, got)

	got, ok = ChoosePreference(map[Subtitle]int{SubtitleTraditional: 2})
	assert.True(t, ok)
	assert.Equal(t, SubtitleTraditional, got)

	_, ok = ChoosePreference(map[Subtitle]int{SubtitleNone: 4})
	assert.False(t, ok)
}

func TestParseSubtitle(t *testing.T) {
	assert.Equal(t, SubtitleBoth, ParseSubtitle("CHS_CHT"))
	assert.Equal(t, SubtitleSimplified, ParseSubtitle(" chs "))
	assert.Equal(t, SubtitleNone, ParseSubtitle("jp"))
	assert.Equal(t, "none", SubtitleNone.String())
	assert.False(t, SubtitleNone.Valid())
	assert.True(t, SubtitleTraditional.Valid())
}
