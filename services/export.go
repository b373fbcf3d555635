package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ExportResult summarizes a static export.
type ExportResult struct {
	Path     string
	Bytes    int
	Skills   int
	Projects int
}

// ExportStatic renders the public page with the current active content and writes it to
// outPath. The file is replaced atomically so a static host never serves a partial page.
//
// Parameters:
//   - skills, projects: sources of active content
//   - renderer: the same renderer that serves the live page
//   - outPath: destination file, usually index.html
func ExportStatic(ctx context.Context, skills SkillLister, projects ProjectLister, renderer *PageRenderer, outPath string) (*ExportResult, error) {
	portfolio, err := LoadPortfolio(ctx, skills, projects)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, portfolio); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	if err := writeFileAtomic(outPath, buf.Bytes()); err != nil {
		return nil, err
	}

	res := &ExportResult{
		Path:     outPath,
		Bytes:    buf.Len(),
		Skills:   len(portfolio.Skills),
		Projects: len(portfolio.Projects),
	}
	log.Info().
		Str("path", res.Path).
		Int("bytes", res.Bytes).
		Int("skills", res.Skills).
		Int("projects", res.Projects).
		Msg("Static export complete")
	return res, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
