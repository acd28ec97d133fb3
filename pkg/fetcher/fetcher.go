// Package fetcher downloads the daily "Relação de Vendas" report from the
// Trier back office. The portal has no export API, so a headless browser
// drives the report screen the same way an operator would.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// ReportName is the stable filename the download is renamed to, so the
// upload step never has to guess which file is current.
const ReportName = "relacao_vendas.xls"

const downloadTimeout = 60 * time.Second

type Fetcher struct {
	portal *Portal
	logger *log.Logger
}

func New(portal *Portal, logger *log.Logger) *Fetcher {
	return &Fetcher{portal: portal, logger: logger}
}

// ReportRange returns the date window for the daily report: yesterday,
// stretched one day back when yesterday was a Sunday so Monday's run still
// covers the weekend sales.
func ReportRange(now time.Time) (start, end time.Time) {
	end = now.AddDate(0, 0, -1)
	start = end
	if end.Weekday() == time.Sunday {
		start = end.AddDate(0, 0, -1)
	}
	return start, end
}

// Download logs into the portal, runs the report for the daily range and
// returns the path of the renamed .xls file.
func (f *Fetcher) Download(ctx context.Context) (string, error) {
	user, password, err := f.portal.Credentials()
	if err != nil {
		return "", err
	}

	dir, err := filepath.Abs(f.portal.DownloadDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	start, end := ReportRange(time.Now())
	f.logger.Info("downloading report", "url", f.portal.URL, "start", start.Format("02/01/2006"), "end", end.Format("02/01/2006"))

	startedAt := time.Now()
	actions := []chromedp.Action{
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
		chromedp.Navigate(f.portal.URL),
		chromedp.WaitVisible(`#id_cod_usuario`, chromedp.ByID),
		chromedp.SendKeys(`#id_cod_usuario`, user, chromedp.ByID),
		chromedp.SendKeys(`#nom_senha`, password, chromedp.ByID),
		chromedp.Click(`[name="login"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#sideMenuSearch`, chromedp.ByID),
		chromedp.SendKeys(`#sideMenuSearch`, "Relação de Vendas", chromedp.ByID),
		chromedp.Click(`[title="Relação de Vendas"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#cod_cartaoEntrada`, chromedp.ByID),
	}
	for _, code := range f.portal.CardCodes {
		actions = append(actions,
			chromedp.SendKeys(`#cod_cartaoEntrada`, code+kb.Enter, chromedp.ByID),
			chromedp.Sleep(500*time.Millisecond),
		)
	}
	actions = append(actions,
		chromedp.Click(`#tabTabdhtmlgoodies_tabView1_1`, chromedp.ByID),
		chromedp.WaitVisible(`#dat_inicio`, chromedp.ByID),
		chromedp.SendKeys(`#dat_inicio`, start.Format("02/01/2006"), chromedp.ByID),
		chromedp.SendKeys(`#dat_fim`, end.Format("02/01/2006"), chromedp.ByID),
		chromedp.Click(`#saida_4`, chromedp.ByID),
		chromedp.Click(`#runReport`, chromedp.ByID),
	)

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("driving portal: %w", err)
	}

	downloaded, err := f.waitForDownload(taskCtx, dir, startedAt)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, ReportName)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if err := os.Rename(downloaded, target); err != nil {
		return "", fmt.Errorf("renaming report: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	f.logger.Info("report downloaded", "file", target, "size", info.Size())
	return target, nil
}

// waitForDownload polls the download dir until a fresh .xls lands or the
// timeout expires. The portal gives no completion signal.
func (f *Fetcher) waitForDownload(ctx context.Context, dir string, since time.Time) (string, error) {
	deadline := time.Now().Add(downloadTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}

		matches, err := filepath.Glob(filepath.Join(dir, "*.xls"))
		if err != nil {
			return "", err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if info.ModTime().After(since) && filepath.Base(m) != ReportName {
				return m, nil
			}
		}
	}
	return "", fmt.Errorf("download did not finish within %s", downloadTimeout)
}
