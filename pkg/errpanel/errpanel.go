// Package errpanel is the bot's anti-crash error reporter: it counts
// recent errors, reports them to a Discord webhook, and forces a shutdown
// if the error rate crosses a threshold — the same circuit-breaker shape
// the bot has always used for panic recovery, repointed at the
// orchestrator's error taxonomy (surfaced Player/Orchestrator failures and
// the fatal NodePool-exhaustion path).
package errpanel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/logger"
)

// Panel manages error counting and webhook reporting.
type Panel struct {
	errorCount    int32
	webhookURL    string
	stopChan      chan struct{}
	shutdownFunc  func()
	maxErrors     int32
	resetInterval time.Duration
	checkInterval time.Duration
}

// Report describes a single error to publish to the webhook.
type Report struct {
	Title   string
	Message string
}

var (
	panel     *Panel
	panelOnce sync.Once
)

// Init initializes the global error panel.
func Init(webhookURL string, shutdownFunc func()) *Panel {
	panelOnce.Do(func() {
		panel = New(webhookURL, shutdownFunc)
	})
	return panel
}

// Get returns the global error panel instance, or nil if Init was never
// called.
func Get() *Panel {
	return panel
}

// New creates a standalone Panel, monitoring goroutines already running.
func New(webhookURL string, shutdownFunc func()) *Panel {
	p := &Panel{
		webhookURL:    webhookURL,
		stopChan:      make(chan struct{}),
		shutdownFunc:  shutdownFunc,
		maxErrors:     15,
		resetInterval: 5 * time.Second,
		checkInterval: 1 * time.Second,
	}

	p.start()
	return p
}

func (p *Panel) start() {
	go func() {
		ticker := time.NewTicker(p.resetInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				atomic.StoreInt32(&p.errorCount, 0)
			case <-p.stopChan:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(p.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if atomic.LoadInt32(&p.errorCount) > p.maxErrors {
					logger.Warn("Error rate exceeded threshold, shutting down", "CRITICAL")

					p.Send(Report{
						Title:   "Critical Error",
						Message: "Unusual error rate detected. Shutting down.",
					})

					if p.shutdownFunc != nil {
						p.shutdownFunc()
					}

					os.Exit(1)
				}
			case <-p.stopChan:
				return
			}
		}
	}()
}

// Stop stops the error monitoring goroutines.
func (p *Panel) Stop() {
	close(p.stopChan)
}

// Increment records that an error happened.
func (p *Panel) Increment() {
	count := atomic.AddInt32(&p.errorCount, 1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")
}

// HandlePanic handles a recovered panic: it counts the error and logs it.
func (p *Panel) HandlePanic(recovered interface{}) {
	p.Increment()
	logger.Error(fmt.Sprintf("recovered panic: %v", recovered), "AntiCrash")
}

// Send posts a report to the configured Discord webhook. A no-op if no
// webhook is configured.
func (p *Panel) Send(r Report) {
	if p.webhookURL == "" {
		return
	}

	embed := map[string]interface{}{
		"author": map[string]string{
			"name": fmt.Sprintf("Error: %s", r.Title),
		},
		"description": r.Message,
		"color":       0xFF0000,
		"footer": map[string]string{
			"text": "hydrogen",
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	req, err := http.NewRequest("POST", p.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to build webhook request: %v", err), "AntiCrash")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("sent error report, status: %d", resp.StatusCode), "AntiCrash")
}

// RecoverMiddleware returns a deferred recovery function that reports into
// the global panel if one has been initialized.
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if panel != nil {
				panel.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("panic recovered (no panel): %v", r), "AntiCrash")
			}
		}
	}
}

// ReportFatal sends a synchronous report then exits the process with a
// non-zero status — used on NodePool exhaustion, matching the anti-crash
// shutdown hook used elsewhere in the panel.
func ReportFatal(title, message string) {
	if panel != nil {
		panel.Send(Report{Title: title, Message: message})
	}
	os.Exit(1)
}
