// package formatter provides functions to export playlists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// ParseFormat accepts a format name or its common aliases (md, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (available: json, csv, markdown, text)", shared.ErrInvalidArgument, s)
	}
}

// Export renders pl in the given format.
func Export(pl *models.Playlist, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(pl)
	case FormatCSV:
		return ExportToCSV(pl)
	case FormatMarkdown:
		return ExportToMarkdown(pl, "")
	case FormatText:
		return ExportToText(pl)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders pl and writes it to w.
func Write(w io.Writer, pl *models.Playlist, format Format) error {
	data, err := Export(pl, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}

// ExportToJSON renders the playlist as pretty-printed JSON.
func ExportToJSON(pl *models.Playlist) ([]byte, error) {
	data, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts a Playlist to CSV format with columns: Position, ID, Name, Artists, Album, Duration, Preview, URL
func ExportToCSV(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Name", "Artists", "Album", "Duration", "Preview", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range pl.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			strings.Join(track.Artists, "; "),
			track.Album,
			FormatDuration(track.Duration()),
			previewURL(track),
			track.ExternalURLs["spotify"],
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Playlist to Markdown format with optional cover image
func ExportToMarkdown(pl *models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s playlist\n\n", title(pl.Emotion.String()))

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Artist**: %s\n", pl.Artist)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", pl.TotalTracks)

	buf.WriteString("## Tracks\n\n")
	for i, track := range pl.Tracks {
		name := track.Name
		if link := track.ExternalURLs["spotify"]; link != "" {
			name = fmt.Sprintf("[%s](%s)", track.Name, link)
		}
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, strings.Join(track.Artists, ", "), name, albumPart, FormatDuration(track.Duration()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Playlist to plain text format
func ExportToText(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Emotion: %s\n", pl.Emotion)
	fmt.Fprintf(&buf, "Artist: %s\n", pl.Artist)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", pl.TotalTracks)

	for i, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, strings.Join(track.Artists, ", "), track.Name, FormatDuration(track.Duration()))
	}

	return buf.Bytes(), nil
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// CoverURL returns the first cover image of the first track that has one.
func CoverURL(pl *models.Playlist) string {
	for _, track := range pl.Tracks {
		if len(track.Images) > 0 && track.Images[0].URL != "" {
			return track.Images[0].URL
		}
	}
	return ""
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteFile renders pl and writes it to path.
func WriteFile(pl *models.Playlist, format Format, path string) error {
	data, err := Export(pl, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the emotion. When client is non-nil the cover image is downloaded next to the
// README; download failures are returned as warnings and do not fail the export.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(pl *models.Playlist, outputDir string, client *http.Client) (*MarkdownExportResult, []error, error) {
	if outputDir == "" {
		outputDir = pl.Emotion.String()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var warnings []error
	var coverImageFilename string
	if imageURL := CoverURL(pl); client != nil && imageURL != "" {
		imageData, err := DownloadImage(client, imageURL)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("failed to download cover image: %w", err))
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				warnings = append(warnings, fmt.Errorf("failed to save cover image: %w", err))
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(pl, coverImageFilename)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, warnings, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, warnings, nil
}

func previewURL(t models.Track) string {
	if t.PreviewURL == nil {
		return ""
	}
	return *t.PreviewURL
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
