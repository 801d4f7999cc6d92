package syllabify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/process"
)

// renderer abstracts the browser so tests can run without Chrome.
type renderer interface {
	// Snapshot returns the DOM of a live page once its scripts settle.
	Snapshot(ctx context.Context, url string) (string, error)
	// PDF renders an HTML document.
	PDF(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// rodRenderer implements renderer with headless Chrome via go-rod.
// Rod downloads Chromium on first use if no browser is found.
type rodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	settle   time.Duration
	log      logger.Logger
}

func newRodRenderer(timeout, settle time.Duration, log logger.Logger) *rodRenderer {
	return &rodRenderer{timeout: timeout, settle: settle, log: log}
}

// ensureBrowser lazily launches and connects to the browser. Callers hold mu.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillTree(l.PID())
		l.Cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	r.launcher = l
	r.log.Debug("browser started", logger.Int("pid", l.PID()))
	return nil
}

// pageTimeout returns the time left for one page: the context deadline when
// set, the configured timeout otherwise.
func (r *rodRenderer) pageTimeout(ctx context.Context) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
		return d, nil
	}
	return r.timeout, nil
}

// open creates a page for url bound to ctx and waits for it to load.
func (r *rodRenderer) open(ctx context.Context, url string) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}
	timeout, err := r.pageTimeout(ctx)
	if err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	page = page.Context(ctx).Timeout(timeout)
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page, nil
}

// Snapshot loads url and returns its DOM after it has stopped changing for
// the settle period.
func (r *rodRenderer) Snapshot(ctx context.Context, url string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, err := r.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = page.Close() }()

	if r.settle > 0 {
		if err := page.WaitDOMStable(r.settle, 0); err != nil {
			return "", fmt.Errorf("%w: waiting for scripts: %v", ErrPageLoad, err)
		}
	}
	content, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: reading DOM: %v", ErrPageLoad, err)
	}
	r.log.Debug("page captured", logger.String("url", url), logger.Int("bytes", len(content)))
	return content, nil
}

// PDF writes htmlContent to a temporary file, opens it and prints it.
// Uses US Letter format (8.5x11 inches) with 0.5 inch margins.
func (r *rodRenderer) PDF(ctx context.Context, htmlContent string) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	r.mu.Lock()
	defer r.mu.Unlock()

	page, err := r.open(ctx, "file://"+tmpPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close shuts the browser down and kills what is left of its process tree.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	if r.launcher != nil {
		process.KillTree(r.launcher.PID())
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
