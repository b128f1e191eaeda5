package openlist

import (
	"context"
	"path"
	"strings"
	"time"
)

// VideoExtensions are the file types Scan reports.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".flv": true,
	".wmv": true, ".webm": true, ".m4v": true, ".ts": true, ".rmvb": true,
}

// IsVideo reports whether name has a known video extension.
func IsVideo(name string) bool {
	return VideoExtensions[strings.ToLower(path.Ext(name))]
}

// File is a video file found by Scan.
type File struct {
	Path     string
	Name     string
	Size     int64
	Modified time.Time
}

type scanDir struct {
	path  string
	depth int
}

// Scan walks root and returns every video file beneath it. Directories
// deeper than the configured max depth are not entered. Any listing error
// aborts the whole scan so callers never see a partial result.
func (c *Client) Scan(ctx context.Context, root string) ([]File, error) {
	start := time.Now()
	var files []File
	dirs := 0

	stack := []scanDir{{path: root}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dirs++

		entries, err := c.listAll(ctx, d.path)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			p := path.Join(d.path, e.Name)
			switch {
			case e.IsDir && d.depth+1 > c.maxDepth:
				c.log.Warn("max depth reached, not descending", "path", p, "max_depth", c.maxDepth)
			case e.IsDir:
				stack = append(stack, scanDir{path: p, depth: d.depth + 1})
			case IsVideo(e.Name):
				files = append(files, File{Path: p, Name: e.Name, Size: e.Size, Modified: e.Modified})
			}
		}
	}

	c.log.Debug("scan complete", "root", root, "dirs", dirs, "files", len(files), "duration_ms", time.Since(start).Milliseconds())
	return files, nil
}

// listAll pages through a directory until the reported total is reached.
func (c *Client) listAll(ctx context.Context, dir string) ([]Entry, error) {
	var entries []Entry
	for page := 1; ; page++ {
		listing, err := c.List(ctx, dir, page, c.pageSize)
		if err != nil {
			return nil, err
		}
		entries = append(entries, listing.Content...)
		if len(listing.Content) == 0 || len(entries) >= listing.Total {
			return entries, nil
		}
	}
}

// Remove deletes files by absolute path, one request per directory.
// It returns how many files were removed and how many failed.
func (c *Client) Remove(ctx context.Context, paths []string) (removed, failed int) {
	byDir := make(map[string][]string)
	var order []string
	for _, p := range paths {
		dir, name := path.Split(p)
		dir = path.Clean(dir)
		if _, ok := byDir[dir]; !ok {
			order = append(order, dir)
		}
		byDir[dir] = append(byDir[dir], name)
	}

	for _, dir := range order {
		names := byDir[dir]
		payload := map[string]any{"dir": dir, "names": names}
		if err := c.call(ctx, "/api/fs/remove", payload, nil); err != nil {
			c.log.Warn("remove failed", "dir", dir, "files", len(names), "error", err)
			failed += len(names)
			continue
		}
		removed += len(names)
	}
	return removed, failed
}
