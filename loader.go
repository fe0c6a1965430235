package ember

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"maps"
	"os"
	"path"
	"runtime"
	"slices"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type assetKind uint8

const (
	assetImage assetKind = iota
	assetText
	assetData
	assetSound
	assetAtlas
)

func (k assetKind) String() string {
	switch k {
	case assetImage:
		return "image"
	case assetText:
		return "text"
	case assetData:
		return "data"
	case assetSound:
		return "sound"
	case assetAtlas:
		return "atlas"
	default:
		return "unknown"
	}
}

type loadRequest struct {
	kind assetKind
	key  string
	path string
}

// loadResult carries decoded data from a worker to the loop goroutine.
type loadResult struct {
	session uint64
	req     loadRequest
	img     image.Image
	raw     []byte
	sound   *SoundData
	pages   []image.Image
	err     error
}

// Loader fetches queued files on worker goroutines and commits them to the
// Cache during Update on the loop goroutine. Each Start opens a session
// that completes exactly once, even when files fail.
type Loader struct {
	// Concurrency limits parallel decodes. 0 uses GOMAXPROCS.
	Concurrency int

	cache      *Cache
	fsys       fs.FS
	onComplete func()
	log        *zap.Logger

	queue   []loadRequest
	session uint64
	loading bool
	total   int
	done    int
	errs    []error
	results chan loadResult
	cancel  context.CancelFunc
}

func newLoader(cache *Cache, root string, onComplete func(), log *zap.Logger) *Loader {
	if root == "" {
		root = "."
	}
	return &Loader{
		cache:      cache,
		fsys:       os.DirFS(root),
		onComplete: onComplete,
		log:        log,
	}
}

// SetFS replaces the file system files are read from.
func (l *Loader) SetFS(fsys fs.FS) {
	l.fsys = fsys
}

func (l *Loader) add(kind assetKind, key, p string) {
	l.queue = append(l.queue, loadRequest{kind: kind, key: key, path: p})
}

// AddImageFile queues a PNG or JPEG to be stored as a texture under key.
func (l *Loader) AddImageFile(key, path string) { l.add(assetImage, key, path) }

// AddTextFile queues a UTF-8 text file.
func (l *Loader) AddTextFile(key, path string) { l.add(assetText, key, path) }

// AddDataFile queues a file kept as raw bytes.
func (l *Loader) AddDataFile(key, path string) { l.add(assetData, key, path) }

// AddSoundFile queues a WAV file decoded into memory.
func (l *Loader) AddSoundFile(key, path string) { l.add(assetSound, key, path) }

// AddAtlasFile queues a TexturePacker JSON atlas. Page images named in the
// JSON are read relative to it.
func (l *Loader) AddAtlasFile(key, path string) { l.add(assetAtlas, key, path) }

// Manifest lists assets by kind, each a key to path map.
type Manifest struct {
	Images  map[string]string `yaml:"images"`
	Text    map[string]string `yaml:"text"`
	Data    map[string]string `yaml:"data"`
	Sounds  map[string]string `yaml:"sounds"`
	Atlases map[string]string `yaml:"atlases"`
}

// AddManifest parses a YAML manifest and queues every asset it lists.
func (l *Loader) AddManifest(data []byte) error {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	for _, group := range []struct {
		kind  assetKind
		files map[string]string
	}{
		{assetImage, m.Images},
		{assetText, m.Text},
		{assetData, m.Data},
		{assetSound, m.Sounds},
		{assetAtlas, m.Atlases},
	} {
		for _, key := range sortedKeys(group.files) {
			l.add(group.kind, key, group.files[key])
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// AddManifestFile reads a YAML manifest from the loader's file system.
func (l *Loader) AddManifestFile(path string) error {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", path, err)
	}
	return l.AddManifest(data)
}

// QueueLen returns the number of files waiting for Start.
func (l *Loader) QueueLen() int {
	return len(l.queue)
}

// IsLoading reports whether a session is in flight.
func (l *Loader) IsLoading() bool {
	return l.loading
}

// Progress returns the committed fraction of the current session in [0, 1].
// It is 1 when no session is in flight.
func (l *Loader) Progress() float64 {
	if !l.loading || l.total == 0 {
		return 1
	}
	return float64(l.done) / float64(l.total)
}

// Errors returns the per-file errors of the last session.
func (l *Loader) Errors() []error {
	return l.errs
}

// Start begins a session with the queued files. An empty queue completes
// immediately. Calling Start while loading does nothing.
func (l *Loader) Start() {
	if l.loading {
		l.log.Warn("start ignored, session in flight", zap.Uint64("session", l.session))
		return
	}
	l.session++
	l.errs = nil
	l.done = 0
	l.total = len(l.queue)

	if l.total == 0 {
		l.complete()
		return
	}

	reqs := l.queue
	l.queue = nil
	l.loading = true
	l.results = make(chan loadResult, len(reqs))

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	limit := l.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	l.log.Debug("session started", zap.Uint64("session", l.session), zap.Int("files", l.total))
	go fetchAll(ctx, l.fsys, reqs, l.session, limit, l.results)
}

// fetchAll decodes reqs with at most limit workers and sends one result per
// request unless ctx is cancelled.
func fetchAll(ctx context.Context, fsys fs.FS, reqs []loadRequest, session uint64, limit int, out chan<- loadResult) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, req := range reqs {
		g.Go(func() error {
			res := fetch(fsys, req)
			res.session = session
			select {
			case out <- res:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	_ = g.Wait()
}

func fetch(fsys fs.FS, req loadRequest) loadResult {
	res := loadResult{req: req}
	if fsys == nil {
		res.err = errors.New("no file system")
		return res
	}
	data, err := fs.ReadFile(fsys, req.path)
	if err != nil {
		res.err = err
		return res
	}
	switch req.kind {
	case assetImage:
		res.img, _, res.err = image.Decode(bytes.NewReader(data))
	case assetText, assetData:
		res.raw = data
	case assetSound:
		res.sound, res.err = decodeSound(data)
	case assetAtlas:
		res.raw = data
		res.pages, res.err = fetchAtlasPages(fsys, req.path, data)
	}
	return res
}

func decodeSound(data []byte) (*SoundData, error) {
	s, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return &SoundData{Format: format, Buffer: buf}, nil
}

func fetchAtlasPages(fsys fs.FS, jsonPath string, data []byte) ([]image.Image, error) {
	names, err := atlasPageImages(data)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("atlas names no page image")
	}
	pages := make([]image.Image, len(names))
	dir := path.Dir(jsonPath)
	for i, name := range names {
		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if pages[i], _, err = image.Decode(bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
	}
	return pages, nil
}

// Update commits every finished file of the current session and fires
// completion once all of them are in.
func (l *Loader) Update() {
	if !l.loading {
		return
	}
	for {
		select {
		case res := <-l.results:
			if res.session != l.session {
				continue
			}
			l.commit(res)
			l.done++
		default:
			if l.done >= l.total {
				l.finish()
			}
			return
		}
	}
}

func (l *Loader) commit(res loadResult) {
	err := res.err
	if err == nil {
		err = l.store(res)
	}
	if err != nil {
		err = fmt.Errorf("load %s %q from %s: %w", res.req.kind, res.req.key, res.req.path, err)
		l.errs = append(l.errs, err)
		l.log.Error("asset failed", zap.Error(err))
		return
	}
	l.log.Debug("asset loaded", zap.Stringer("kind", res.req.kind), zap.String("key", res.req.key))
}

func (l *Loader) store(res loadResult) error {
	key := res.req.key
	switch res.req.kind {
	case assetImage:
		l.cache.AddImage(key, ebiten.NewImageFromImage(res.img))
	case assetText:
		l.cache.AddText(key, string(res.raw))
	case assetData:
		l.cache.AddData(key, res.raw)
	case assetSound:
		l.cache.AddSound(key, res.sound)
	case assetAtlas:
		pages := make([]*ebiten.Image, len(res.pages))
		for i, p := range res.pages {
			pages[i] = ebiten.NewImageFromImage(p)
		}
		a, err := LoadAtlas(res.raw, pages)
		if err != nil {
			return err
		}
		l.cache.AddAtlas(key, a)
	}
	return nil
}

func (l *Loader) finish() {
	l.loading = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.results = nil
	l.complete()
}

func (l *Loader) complete() {
	l.log.Info("load complete",
		zap.Uint64("session", l.session),
		zap.Int("files", l.total),
		zap.Int("errors", len(l.errs)))
	if l.onComplete != nil {
		l.onComplete()
	}
}

// Reset drops the queue and abandons any session in flight; its completion
// never fires.
func (l *Loader) Reset() {
	l.queue = nil
	if l.loading {
		l.session++
		l.loading = false
		if l.cancel != nil {
			l.cancel()
			l.cancel = nil
		}
		l.results = nil
	}
	l.total = 0
	l.done = 0
}
