package release

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Matrix", "matrix"},
		{"Fast & Furious", "fast and furious"},
		{"Spider-Man: No Way Home", "spider man no way home"},
		{"  Extra   Spaces  ", "extra spaces"},
		{"示例番剧", "示例番剧"},
		{"ＥＸＡＭＰＬＥ　２", "example 2"},
		{"Pokémon", "pokemon"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CleanTitle(tt.input)
			if got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_FullWidth(t *testing.T) {
	if got := Normalize("示例／Ｅｘａｍｐｌｅ－０５"); got != "示例/Example-05" {
		t.Errorf("Normalize = %q", got)
	}
}
