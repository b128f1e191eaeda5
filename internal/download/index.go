package download

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/tmdb"
	"github.com/vmunix/autoani/pkg/release"
)

// Rescan lists the remote store, classifies every video file and replaces
// the persisted remote index with the result. If the listing fails the
// previous index is left untouched and the error returned.
func (e *Engine) Rescan(ctx context.Context) (library.Index, error) {
	start := time.Now()

	files, err := e.remote.Scan(ctx, e.root)
	if err != nil {
		return nil, err
	}

	c, err := e.newClassifier()
	if err != nil {
		return nil, err
	}

	rows := make([]*library.RemoteFile, 0, len(files))
	classified := 0
	for _, f := range files {
		rf := &library.RemoteFile{Path: f.Path, Name: f.Name, Size: f.Size}
		if !f.Modified.IsZero() {
			m := f.Modified.UTC()
			rf.ModifiedAt = &m
		}
		if id, ep, ok := c.classify(ctx, f.Name); ok {
			rf.SeriesID = &id
			rf.Episode = &ep
			classified++
		}
		rows = append(rows, rf)
	}

	if err := e.store.ReplaceRemoteIndex(rows); err != nil {
		return nil, err
	}
	if e.observe != nil {
		e.observe(len(rows), classified)
	}

	e.log.Info("remote index rebuilt", "files", len(rows), "classified", classified,
		"duration_ms", time.Since(start).Milliseconds())
	return library.NewIndex(rows), nil
}

// classifier maps remote file names to (series, episode) keys.
type classifier struct {
	engine   *Engine
	byName   map[string]int64
	names    []string
	ids      []int64
	resolved map[string]int64 // metadata lookups this run; 0 means no match
}

func (e *Engine) newClassifier() (*classifier, error) {
	all, err := e.store.ListSeries(library.SeriesFilter{})
	if err != nil {
		return nil, err
	}
	c := &classifier{
		engine:   e,
		byName:   make(map[string]int64),
		resolved: make(map[string]int64),
	}
	for _, sr := range all {
		c.byName[sr.Name] = sr.ID
		c.names = append(c.names, sr.Name)
		c.ids = append(c.ids, sr.ID)
		for _, a := range sr.Aliases {
			if _, ok := c.byName[a]; !ok {
				c.byName[a] = sr.ID
			}
		}
	}
	return c, nil
}

// classify reads the series and episode from a file name. The series is
// found by exact name or alias, then by fuzzy match against subscribed
// names, then by metadata search.
func (c *classifier) classify(ctx context.Context, fileName string) (int64, int, bool) {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))

	name, ok := release.SeriesName(base)
	if !ok {
		return 0, 0, false
	}
	ep, ok := release.EpisodeNumber(base)
	if !ok {
		return 0, 0, false
	}

	if id, ok := c.byName[name]; ok {
		return id, ep, true
	}
	if m := release.MatchTitle(name, c.names); m.Index >= 0 && m.Confidence >= release.ConfidenceMedium {
		return c.ids[m.Index], ep, true
	}
	if id := c.lookup(ctx, name); id != 0 {
		return id, ep, true
	}
	return 0, 0, false
}

func (c *classifier) lookup(ctx context.Context, name string) int64 {
	if c.engine.resolver == nil {
		return 0
	}
	if id, ok := c.resolved[name]; ok {
		return id
	}

	var id int64
	match, err := c.engine.resolver.Resolve(ctx, name)
	switch {
	case err == nil:
		id = match.ID
	case errors.Is(err, tmdb.ErrNotFound):
		c.engine.log.Debug("remote file series unknown", "name", name)
	default:
		c.engine.log.Warn("remote file lookup failed", "name", name, "error", err)
	}
	c.resolved[name] = id
	return id
}
