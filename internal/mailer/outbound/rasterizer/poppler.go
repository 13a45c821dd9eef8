package rasterizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBinary = "pdftoppm"
	DefaultDPI    = 200

	outputPrefix = "page"
	// pdftoppm exits with 1 when the input cannot be opened or parsed.
	exitBadInput = 1
)

type Config struct {
	// Binary is the pdftoppm executable name or path.
	Binary string
	DPI    int
	// TempDir is where per-render work directories are created. Empty means os.TempDir.
	TempDir string
}

// Poppler renders PDFs with poppler's pdftoppm.
type Poppler struct {
	cfg Config
	ins instrument.Instrumentation
}

func NewPoppler(cfg Config, ins instrument.Instrumentation) *Poppler {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Poppler{cfg: cfg, ins: ins}
}

// Render returns one image per page in page order. The work directory is
// removed before returning.
func (p *Poppler) Render(ctx context.Context, pdf []byte) ([]image.Image, error) {
	ctx, span := p.ins.Tracer("mailer.outbound.rasterizer").Start(ctx, "Render")
	defer span.End()

	pages, err := p.render(ctx, pdf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("pages", len(pages)))
	return pages, nil
}

func (p *Poppler) render(ctx context.Context, pdf []byte) ([]image.Image, error) {
	dir, err := os.MkdirTemp(p.cfg.TempDir, "pagemail-*")
	if err != nil {
		return nil, fmt.Errorf("rasterizer: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("rasterizer: write input: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Binary, "-r", strconv.Itoa(p.cfg.DPI), "-png", input, filepath.Join(dir, outputPrefix))
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitBadInput && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", entity.ErrInvalidInput, msg)
		}
		return nil, fmt.Errorf("rasterizer: %s: %w: %s", p.cfg.Binary, err, msg)
	}

	files, err := pageFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", entity.ErrInvalidInput)
	}

	pages := make([]image.Image, 0, len(files))
	for _, name := range files {
		img, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("rasterizer: decode %s: %w", name, err)
		}
		pages = append(pages, img)
	}

	return pages, nil
}

// pageFiles lists pdftoppm outputs ordered by page number. pdftoppm pads
// numbers to the page count width, so lexical order is not enough.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: list output: %w", err)
	}

	type numbered struct {
		name string
		n    int
	}

	var found []numbered
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), outputPrefix+"-")
		if !ok || e.IsDir() {
			continue
		}
		rest, ok = strings.CutSuffix(rest, ".png")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		found = append(found, numbered{name: e.Name(), n: n})
	}

	slices.SortFunc(found, func(a, b numbered) int { return a.n - b.n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return png.Decode(f)
}
