package download

import (
	"errors"
	"testing"

	"github.com/vmunix/autoani/internal/library"
)

func TestEpisodeError(t *testing.T) {
	err := &EpisodeError{Op: "submit", SeriesID: 1001, Series: "示例番剧", Episode: 5, Err: ErrSubmit}

	if got, want := err.Error(), "submit 示例番剧 (1001) EP05: offline download not accepted"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSubmit) {
		t.Error("EpisodeError should unwrap to its cause")
	}

	var wrapped error = &EpisodeError{Op: "promote", Err: library.ErrStaleStatus}
	var target *EpisodeError
	if !errors.As(wrapped, &target) || target.Op != "promote" {
		t.Errorf("errors.As failed for %v", wrapped)
	}
}
