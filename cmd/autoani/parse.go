package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/autoani/pkg/release"
)

var parseCmd = &cobra.Command{
	Use:   "parse [title]",
	Short: "Parse a release title (local, no server needed)",
	Long: `Parse a fansub release title and show what autoani reads from it.

Use --file to parse one title per line.

Examples:
  autoani parse "[LoliHouse] Sousou no Frieren - 05 [WebRip 1080p HEVC-10bit AAC][简繁内封字幕]"
  autoani parse --file titles.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	parseCmd.Flags().StringP("file", "f", "", "Read titles from file, one per line")
	rootCmd.AddCommand(parseCmd)
}

// ParseResultJSON is the JSON form of a parsed title.
type ParseResultJSON struct {
	Title    string `json:"title"`
	Series   string `json:"series,omitempty"`
	Episode  int    `json:"episode,omitempty"`
	Group    string `json:"group,omitempty"`
	Subtitle string `json:"subtitle"`
}

func toParseJSON(info *release.Info) ParseResultJSON {
	return ParseResultJSON{
		Title:    info.Title,
		Series:   info.Series,
		Episode:  info.Episode,
		Group:    info.Group,
		Subtitle: info.Subtitle.String(),
	}
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var titles []string
	switch {
	case file != "":
		lines, err := readTitles(file)
		if err != nil {
			return err
		}
		titles = lines
	case len(args) == 1:
		titles = []string{args[0]}
	default:
		return fmt.Errorf("provide a title or --file")
	}

	infos := make([]*release.Info, len(titles))
	for i, t := range titles {
		infos[i] = release.Parse(t)
	}

	if jsonOutput {
		out := make([]ParseResultJSON, len(infos))
		for i, info := range infos {
			out[i] = toParseJSON(info)
		}
		if len(out) == 1 {
			printJSON(out[0])
		} else {
			printJSON(out)
		}
		return nil
	}

	for i, info := range infos {
		if i > 0 {
			fmt.Println()
		}
		printParseResult(info)
	}
	return nil
}

func readTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var titles []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return titles, nil
}

func printParseResult(info *release.Info) {
	fmt.Printf("Title:     %s\n", info.Title)
	fmt.Printf("Series:    %s\n", orDash(info.Series))
	fmt.Printf("Episode:   %s\n", info.EpisodeString())
	fmt.Printf("Group:     %s\n", orDash(info.Group))
	fmt.Printf("Subtitle:  %s\n", orDash(info.Subtitle.String()))
}
