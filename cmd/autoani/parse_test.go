package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/autoani/pkg/release"
)

func TestReadTitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.txt")
	content := "# fansub titles\n[Group] 示例番剧 - 01 [简体]\n\n  [Group] 示例番剧 - 02 [繁体]  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	titles, err := readTitles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Group] 示例番剧 - 01 [简体]", "[Group] 示例番剧 - 02 [繁体]"}, titles)
}

func TestReadTitles_NotFound(t *testing.T) {
	_, err := readTitles(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestToParseJSON(t *testing.T) {
	info := release.Parse("[LoliHouse] 永远的黄昏 / Towa no Yuugure - 05 [WebRip 1080p HEVC-10bit AAC][简繁内封字幕]")

	got := toParseJSON(info)
	assert.Equal(t, "永远的黄昏", got.Series)
	assert.Equal(t, 5, got.Episode)
	assert.Equal(t, "LoliHouse", got.Group)
	assert.Equal(t, "chs_cht", got.Subtitle)
}

func TestParseCommand_Human(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, runParseCmd(parseCmd, []string{"[Group] 示例番剧 / Example - 05 [1080p][简体]"}))
	})
	assert.Contains(t, out, "Series:    示例番剧")
	assert.Contains(t, out, "Episode:   EP05")
	assert.Contains(t, out, "Group:     Group")
}

func TestParseCommand_NoInput(t *testing.T) {
	err := runParseCmd(parseCmd, nil)
	require.Error(t, err)
}
