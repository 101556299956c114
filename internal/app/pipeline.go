package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Getabako/instagram-workflow-template/internal/calendar"
	"github.com/Getabako/instagram-workflow-template/internal/config"
	"github.com/Getabako/instagram-workflow-template/internal/render"
	"github.com/Getabako/instagram-workflow-template/internal/state"
	"github.com/Getabako/instagram-workflow-template/internal/upload"
)

// HandoffQRName is written next to the composed slides after a run.
const HandoffQRName = "handoff-qr.png"

const handoffQRSize = 512

// Display shows a composed slide, e.g. on the framebuffer.
type Display interface {
	Show(img image.Image) error
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Composed int
	Uploaded int
	Failed   int
	Posts    int
	Folder   string
	// FolderURL is the remote folder when anything was uploaded, otherwise
	// the local composed directory.
	FolderURL string
}

// Pipeline composes every calendar block, uploads the slides and writes the
// bulk-post schedule.
type Pipeline struct {
	Config     *config.Config
	Compositor *render.Compositor
	Uploader   *upload.Client
	Store      *state.Store
	Display    Display
	Logger     Logger
	Now        func() time.Time
}

func NewPipeline(cfg *config.Config, compositor *render.Compositor, uploader *upload.Client, store *state.Store) *Pipeline {
	return &Pipeline{Config: cfg, Compositor: compositor, Uploader: uploader, Store: store, Logger: NoopLogger{}, Now: time.Now}
}

type item struct {
	row        calendar.Row
	block      calendar.Block
	background string
}

func (it item) name() string { return calendar.ImageName(it.row.Day, it.block.Index) }

type composed struct {
	canvas *image.RGBA
	data   []byte
	err    error
}

// Run executes one batch. Per-item failures are counted and skipped; the
// returned error is set only when the run could not proceed at all.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	cfg := p.Config
	folder := cfg.UploadFolder(p.now())
	sum := Summary{Folder: folder}

	rows, err := calendar.ReadFile(cfg.Paths.Calendar)
	if err != nil {
		p.Store.Abort(err)
		return sum, err
	}
	if err := os.MkdirAll(cfg.Paths.Composed, 0o755); err != nil {
		err = fmt.Errorf("create composed dir: %w", err)
		p.Store.Abort(err)
		return sum, err
	}

	var valid []calendar.Row
	var items []item
	for _, row := range rows {
		if !row.Valid() {
			p.Logger.Errorf("pipeline", "day %d: %d fields, need %d; skipped", row.Day, len(row.Fields), calendar.MinFields)
			continue
		}
		valid = append(valid, row)
		for _, block := range row.Blocks() {
			items = append(items, item{
				row:        row,
				block:      block,
				background: filepath.Join(cfg.Paths.Images, calendar.ImageName(row.Day, block.Index)),
			})
		}
	}
	p.Store.Begin(len(items), folder)
	p.Logger.Infof("pipeline", "%d days, %d images, folder %s", len(valid), len(items), folder)

	results := p.composeAll(ctx, items)
	dayURLs := make(map[int][]string)
	uploading := p.Uploader.Enabled()

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			p.Store.Abort(err)
			return sum, err
		}
		var res composed
		select {
		case <-ctx.Done():
			p.Store.Abort(ctx.Err())
			return sum, ctx.Err()
		case res = <-results[i]:
		}
		p.Store.SetCurrent(it.name())

		if res.err != nil {
			sum.Failed++
			p.Store.Fail(res.err)
			p.Logger.Errorf("pipeline", "%s (%s): %v", it.name(), it.block.Name, res.err)
			continue
		}

		name := calendar.ComposedName(sum.Composed)
		if err := os.WriteFile(filepath.Join(cfg.Paths.Composed, name), res.data, 0o644); err != nil {
			sum.Failed++
			p.Store.Fail(err)
			p.Logger.Errorf("pipeline", "save %s: %v", name, err)
			continue
		}
		sum.Composed++
		p.Store.AddComposed()
		p.Logger.Infof("pipeline", "%s (%s) saved as %s", it.name(), it.block.Name, name)
		p.show(res.canvas)

		if !uploading {
			continue
		}
		url, err := p.Uploader.Upload(ctx, res.data, folder+"/"+name)
		if err != nil {
			sum.Failed++
			p.Store.Fail(err)
			p.Logger.Errorf("upload", "%s: %v", name, err)
		} else {
			sum.Uploaded++
			p.Store.AddUploaded()
			dayURLs[it.row.Day] = append(dayURLs[it.row.Day], url)
			p.Logger.Infof("upload", "%s -> %s", name, url)
		}
		if err := sleepCtx(ctx, cfg.Upload.Delay); err != nil {
			p.Store.Abort(err)
			return sum, err
		}
	}

	sum.FolderURL, _ = filepath.Abs(cfg.Paths.Composed)
	if uploading {
		p.Store.SetPhase(state.UPLOADING)
		thanks, err := p.uploadThanks(ctx, folder, &sum)
		if err != nil {
			p.Store.Abort(err)
			return sum, err
		}
		if u := folderURL(dayURLs, thanks); u != "" {
			sum.FolderURL = u
		}
		if sum.Posts, err = p.writeBulkPost(valid, dayURLs, thanks); err != nil {
			p.Logger.Errorf("bulkpost", "%v", err)
		}
	}

	if err := p.writeHandoffQR(sum.FolderURL); err != nil {
		p.Logger.Errorf("pipeline", "handoff qr: %v", err)
	}

	p.Store.SetPhase(state.DONE)
	p.Logger.Infof("pipeline", "composed %d, uploaded %d, failed %d, posts %d, saved to %s",
		sum.Composed, sum.Uploaded, sum.Failed, sum.Posts, sum.FolderURL)
	return sum, nil
}

// composeAll renders items on the configured number of workers. Result i is
// delivered on the i-th channel so consumers can keep item order.
func (p *Pipeline) composeAll(ctx context.Context, items []item) []chan composed {
	results := make([]chan composed, len(items))
	for i := range results {
		results[i] = make(chan composed, 1)
	}

	workers := p.Config.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				results[i] <- p.composeItem(items[i])
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	return results
}

func (p *Pipeline) composeItem(it item) composed {
	bg, err := render.LoadBackground(it.background)
	if err != nil {
		return composed{err: err}
	}
	canvas, err := p.Compositor.Render(render.Request{Background: bg, Title: it.block.Title, Content: it.block.Content})
	if err != nil {
		return composed{err: err}
	}
	data, err := render.EncodePNG(canvas)
	if err != nil {
		return composed{err: err}
	}
	return composed{canvas: canvas, data: data}
}

// ComposeBlock composes a single calendar block and saves it under its
// source name in the composed directory. The calendar is re-read so edits
// made while watching are picked up.
func (p *Pipeline) ComposeBlock(day, index int, background string) (string, error) {
	rows, err := calendar.ReadFile(p.Config.Paths.Calendar)
	if err != nil {
		return "", err
	}
	if day < 1 || day > len(rows) {
		return "", fmt.Errorf("day %d not in calendar (%d rows)", day, len(rows))
	}
	row := rows[day-1]
	block, ok := row.Block(index)
	if !ok {
		return "", fmt.Errorf("day %d has no block %d", day, index)
	}

	res := p.composeItem(item{row: row, block: block, background: background})
	if res.err != nil {
		return "", res.err
	}
	if err := os.MkdirAll(p.Config.Paths.Composed, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(p.Config.Paths.Composed, calendar.ImageName(day, index))
	if err := os.WriteFile(out, res.data, 0o644); err != nil {
		return "", err
	}
	p.show(res.canvas)
	return out, nil
}

func (p *Pipeline) uploadThanks(ctx context.Context, folder string, sum *Summary) ([]string, error) {
	dir := p.Config.Paths.Thanks
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create thanks dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, entry := range entries {
		if entry.IsDir() || !isThanksImage(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			p.Logger.Errorf("upload", "thanks %s: %v", entry.Name(), err)
			continue
		}
		url, err := p.Uploader.Upload(ctx, data, folder+"/"+entry.Name())
		if err != nil {
			p.Logger.Errorf("upload", "thanks %s: %v", entry.Name(), err)
		} else {
			sum.Uploaded++
			p.Store.AddUploaded()
			urls = append(urls, url)
		}
		if err := sleepCtx(ctx, p.Config.Upload.Delay); err != nil {
			return urls, err
		}
	}
	return urls, nil
}

func isThanksImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// writeBulkPost schedules every day whose four slides all uploaded.
func (p *Pipeline) writeBulkPost(rows []calendar.Row, dayURLs map[int][]string, thanks []string) (int, error) {
	var days []calendar.Row
	var media []string
	for _, row := range rows {
		urls := dayURLs[row.Day]
		if len(urls) != calendar.BlocksPerDay {
			if len(urls) > 0 {
				p.Logger.Errorf("bulkpost", "day %d: %d of %d slides uploaded; not scheduled", row.Day, len(urls), calendar.BlocksPerDay)
			}
			continue
		}
		days = append(days, row)
		media = append(media, urls...)
	}

	var buf bytes.Buffer
	n, err := calendar.WriteBulkPost(&buf, days, media, thanks, p.now(), p.Config.Pipeline.PostHour)
	if err != nil || n == 0 {
		return 0, err
	}
	out := p.Config.Paths.BulkPost
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	p.Logger.Infof("bulkpost", "%d posts written to %s", n, out)
	return n, nil
}

func (p *Pipeline) writeHandoffQR(payload string) error {
	if payload == "" {
		return errors.New("nothing to hand off")
	}
	data, err := render.QRCodePNG(payload, handoffQRSize)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.Config.Paths.Composed, HandoffQRName), data, 0o644)
}

func (p *Pipeline) show(img image.Image) {
	if p.Display == nil || img == nil {
		return
	}
	if err := p.Display.Show(img); err != nil {
		p.Logger.Errorf("display", "%v", err)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// folderURL derives the remote folder from any uploaded file URL.
func folderURL(dayURLs map[int][]string, thanks []string) string {
	for _, urls := range dayURLs {
		if len(urls) > 0 {
			return dirURL(urls[0])
		}
	}
	if len(thanks) > 0 {
		return dirURL(thanks[0])
	}
	return ""
}

func dirURL(u string) string {
	scheme := strings.Index(u, "://")
	i := strings.LastIndex(u, "/")
	if i < 0 || (scheme >= 0 && i <= scheme+2) {
		return ""
	}
	return u[:i+1]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
