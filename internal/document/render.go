package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
)

// DefaultDPI is the render resolution used when none is configured.
const DefaultDPI = 200

// RenderPage renders a single 1-based page from a PDF to PNG bytes using
// pdftoppm (poppler-utils).
func RenderPage(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	tmpDir, err := os.MkdirTemp("", "signet-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Output prefix for pdftoppm
	outputPrefix := filepath.Join(tmpDir, "page")

	// Run pdftoppm to render the page
	// -png: output PNG format
	// -f N / -l N: first and last page to render
	// -r N: resolution in DPI
	// -singlefile: don't add page number suffix
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	// pdftoppm with -singlefile creates: <prefix>.png
	srcPath := outputPrefix + ".png"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}

// RenderPages renders every page of a PDF concurrently and returns the PNG
// bytes in page order.
func RenderPages(ctx context.Context, pdfPath string, dpi int) ([][]byte, error) {
	pageCount, err := PageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	maxWorkers := runtime.NumCPU()

	type result struct {
		pageNum int
		data    []byte
		err     error
	}

	results := make(chan result, pageCount)
	sem := make(chan struct{}, maxWorkers)

	for page := 1; page <= pageCount; page++ {
		sem <- struct{}{} // acquire
		go func(pageNum int) {
			defer func() { <-sem }() // release

			data, err := RenderPage(ctx, pdfPath, pageNum, dpi)
			results <- result{pageNum: pageNum, data: data, err: err}
		}(page)
	}

	collected := make([]result, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		r := <-results
		if r.err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", r.pageNum, r.err)
		}
		collected = append(collected, r)
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].pageNum < collected[j].pageNum })

	pages := make([][]byte, 0, pageCount)
	for _, r := range collected {
		pages = append(pages, r.data)
	}
	return pages, nil
}
