package capture

import (
	"context"
	"fmt"
	"imagediff/internal/codec"
	"time"

	"github.com/playwright-community/playwright-go"
)

type PlaywrightConfig struct {
	ViewportWidth  int
	ViewportHeight int
	FullPage       bool

	Timeout time.Duration
	Delay   time.Duration

	Headless  bool
	UserAgent string
	// ChromeDevtoolsProtocolURL connects to a running browser instead of
	// launching one.
	ChromeDevtoolsProtocolURL string
}

func DefaultPlaywrightConfig() PlaywrightConfig {
	return PlaywrightConfig{
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		FullPage:       true,
		Timeout:        30 * time.Second,
		Delay:          3 * time.Second,
		Headless:       true,
	}
}

type playwrightCapturer struct {
	config PlaywrightConfig
}

func NewPlaywrightCapturer(p PlaywrightConfig) Capturer {
	return &playwrightCapturer{
		config: p,
	}
}

func (c *playwrightCapturer) Capture(ctx context.Context, url string, options Options) (*Result, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := c.browser(pw)
	if err != nil {
		return nil, err
	}
	if c.config.ChromeDevtoolsProtocolURL == "" {
		defer browser.Close()
	}

	pageOptions := playwright.BrowserNewPageOptions{}
	if c.config.UserAgent != "" {
		pageOptions.UserAgent = playwright.String(c.config.UserAgent)
	}
	page, err := browser.NewPage(pageOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	defer page.Close()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			page.Close()
		case <-done:
		}
	}()
	defer close(done)

	if err := page.SetViewportSize(c.config.ViewportWidth, c.config.ViewportHeight); err != nil {
		return nil, fmt.Errorf("failed to set viewport size: %w", err)
	}
	if len(options.Headers) > 0 {
		if err := page.SetExtraHTTPHeaders(options.Headers); err != nil {
			return nil, fmt.Errorf("failed to set HTTP headers: %w", err)
		}
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(c.config.Timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if c.config.Delay > 0 {
		timer := time.NewTimer(c.config.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	if len(options.MaskSelectors) > 0 {
		script, err := maskScript()
		if err != nil {
			return nil, err
		}
		if _, err := page.Evaluate(script, options.MaskSelectors); err != nil {
			return nil, fmt.Errorf("failed to mask selectors: %w", err)
		}
	}

	// JPEG artifacts would show up as differences, so screenshots are
	// always PNG.
	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(c.config.FullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}

	picture, _, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		PNG:     data,
		Picture: picture,
	}, nil
}

func (c *playwrightCapturer) browser(pw *playwright.Playwright) (playwright.Browser, error) {
	if c.config.ChromeDevtoolsProtocolURL != "" {
		browser, err := pw.Chromium.ConnectOverCDP(c.config.ChromeDevtoolsProtocolURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to browser via CDP at %s: %w", c.config.ChromeDevtoolsProtocolURL, err)
		}
		return browser, nil
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(c.config.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return browser, nil
}
