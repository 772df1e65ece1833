// Package loader fetches mesh documents and their side files over HTTP or
// from the local filesystem and parses them into mesh descriptors.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/texture"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Load errors. Every error returned by Load wraps one of these.
var (
	ErrEmptyURL  = errors.New("empty mesh URL")
	ErrTransport = errors.New("transport error")
	ErrParse     = errors.New("parse error")
)

// Fetcher loads a mesh document. progress may be nil.
type Fetcher interface {
	Load(ctx context.Context, url string, progress func(Progress)) (*mesh.Descriptor, error)
}

// Progress is a byte count for the main document. Total is -1 when the
// size is not known up front.
type Progress struct {
	Loaded int64
	Total  int64
}

// Percent returns the completion percentage clamped to [0,100]. ok is false
// when the total is unknown.
func (p Progress) Percent() (pct float64, ok bool) {
	if p.Total <= 0 {
		return 0, false
	}
	pct = float64(p.Loaded) / float64(p.Total) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// Config configures a Loader.
type Config struct {
	BasePath       string // directory plain relative paths resolve against
	StagingDir     string // where material libraries are written for parsing; os.TempDir if empty
	Timeout        time.Duration
	UserAgent      string
	MaxTextureSize int   // textures are downscaled to fit; 0 disables
	CacheBytes     int64 // side-file cache budget; 0 disables caching
}

// DefaultConfig returns the stock loader settings.
func DefaultConfig() Config {
	return Config{
		Timeout:        60 * time.Second,
		UserAgent:      "relive/1.0",
		MaxTextureSize: 4096,
		CacheBytes:     64 << 20,
	}
}

// Loader implements Fetcher.
type Loader struct {
	cfg    Config
	client *http.Client
	cache  *Cache
	log    *zap.Logger
}

// New creates a loader. log may be nil.
func New(cfg Config, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  NewCache(cfg.CacheBytes),
		log:    log,
	}
}

// Cache returns the side-file cache.
func (l *Loader) Cache() *Cache { return l.cache }

// Load fetches and parses the OBJ document at raw, then resolves its
// material library and diffuse textures. Side-file failures are logged and
// leave the affected parts flagged for the default material.
func (l *Loader) Load(ctx context.Context, raw string, progress func(Progress)) (*mesh.Descriptor, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyURL
	}
	loc, err := l.resolve(raw)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, total, err := l.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	cr := newCountingReader(body, total, progress)
	cr.emit()
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, loc, err)
	}
	cr.finish()

	desc, err := mesh.DecodeOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, loc, err)
	}
	desc.Source = raw

	l.resolveMaterials(ctx, loc, desc)

	l.log.Info("mesh loaded",
		zap.String("url", raw),
		zap.Int("bytes", len(data)),
		zap.Int("parts", len(desc.Parts)),
		zap.Int("triangles", desc.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)))
	return desc, nil
}

// open returns a reader for loc and its size, -1 if unknown.
func (l *Loader) open(ctx context.Context, loc location) (io.ReadCloser, int64, error) {
	if !loc.remote() {
		f, err := os.Open(loc.path)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		size := int64(-1)
		if st, err := f.Stat(); err == nil {
			size = st.Size()
		}
		return f, size, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.url.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if l.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", l.cfg.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return nil, 0, fmt.Errorf("%w: GET %s: %s", ErrTransport, loc, resp.Status)
		}
		return nil, 0, fmt.Errorf("%w: GET %s: %s: %s", ErrTransport, loc, resp.Status, msg)
	}
	return resp.Body, resp.ContentLength, nil
}

// fetch reads a whole side file, going through the cache.
func (l *Loader) fetch(ctx context.Context, loc location) ([]byte, error) {
	key := loc.String()
	if data, ok := l.cache.Get(key); ok {
		return data, nil
	}
	body, _, err := l.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, loc, err)
	}
	l.cache.Set(key, data)
	return data, nil
}

func (l *Loader) resolveMaterials(ctx context.Context, base location, desc *mesh.Descriptor) {
	if desc.MaterialLib == "" {
		return
	}
	lib, err := base.join(desc.MaterialLib)
	if err != nil {
		l.log.Warn("bad material library reference", zap.String("mtllib", desc.MaterialLib), zap.Error(err))
		return
	}
	mats, err := l.materials(ctx, lib)
	if err != nil {
		l.log.Warn("material library unavailable", zap.String("mtllib", lib.String()), zap.Error(err))
		return
	}

	textures := make(map[string]*image.RGBA)
	for _, p := range desc.Parts {
		src, ok := mats[p.MaterialName]
		if !ok {
			if p.MaterialName != "" {
				l.log.Debug("material not in library", zap.String("material", p.MaterialName))
			}
			continue
		}
		m := src.Clone()
		if m.DiffuseMap != "" {
			m.Texture = l.texture(ctx, lib, m.DiffuseMap, textures)
		}
		p.Material = m
		p.NeedsDefaultMaterial = false
	}
}

// materials fetches a material library and parses it from a staged copy.
func (l *Loader) materials(ctx context.Context, lib location) (map[string]*mesh.Material, error) {
	data, err := l.fetch(ctx, lib)
	if err != nil {
		return nil, err
	}

	dir := l.cfg.StagingDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating staging dir: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "mtl-*.mtl")
	if err != nil {
		return nil, fmt.Errorf("staging material library: %w", err)
	}
	staged := f.Name()
	defer os.Remove(staged)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("staging material library: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("staging material library: %w", err)
	}

	mats, err := mesh.ReadMTL(staged)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, lib, err)
	}
	return mats, nil
}

// texture returns the decoded diffuse map ref, or nil when it cannot be
// fetched or decoded. seen shares decoded images between parts of one load.
func (l *Loader) texture(ctx context.Context, lib location, ref string, seen map[string]*image.RGBA) *image.RGBA {
	loc, err := lib.join(ref)
	if err != nil {
		l.log.Warn("bad texture reference", zap.String("texture", ref), zap.Error(err))
		return nil
	}
	key := loc.String()
	if img, ok := seen[key]; ok {
		return img
	}

	data, err := l.fetch(ctx, loc)
	if err != nil {
		l.log.Warn("texture unavailable", zap.String("texture", key), zap.Error(err))
		seen[key] = nil
		return nil
	}
	img, err := texture.Decode(bytes.NewReader(data), path.Base(key))
	if err != nil {
		l.log.Warn("texture undecodable", zap.String("texture", key), zap.Error(err))
		seen[key] = nil
		return nil
	}
	img = texture.Fit(img, l.cfg.MaxTextureSize)
	seen[key] = img
	return img
}
