package viewport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/normalize"
	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/pkg/mesh"
)

// MeshLoadRequest is one LoadMesh call. Only the request holding the
// latest token may change the scene.
type MeshLoadRequest struct {
	URL   string
	Token uint64
}

// inflight is the request currently being fetched.
type inflight struct {
	req    MeshLoadRequest
	cancel context.CancelFunc
}

// swapCoordinator tracks the latest token and the in-flight request.
type swapCoordinator struct {
	token    uint64
	active   *inflight
	progress progressTracker
}

// issue starts a new request for url, superseding any in-flight one.
func (c *Controller) issue(url string) {
	c.supersede()

	c.swap.token++
	req := MeshLoadRequest{URL: url, Token: c.swap.token}
	ctx, cancel := context.WithCancel(c.ctx)
	c.swap.active = &inflight{req: req, cancel: cancel}
	c.swap.progress.reset()
	c.state = StateLoading

	c.log.Debug("mesh load issued", zap.String("url", url), zap.Uint64("token", req.Token))
	go c.fetch(ctx, req)
}

// supersede invalidates the in-flight request, if any. Its events will be
// dropped on arrival; cancelling the context only saves bandwidth.
func (c *Controller) supersede() {
	if c.swap.active == nil {
		return
	}
	c.swap.active.cancel()
	c.log.Debug("mesh load superseded",
		zap.String("url", c.swap.active.req.URL),
		zap.Uint64("token", c.swap.active.req.Token))
	c.swap.active = nil
	c.swap.token++
}

// fetch runs off the UI thread. Everything it learns goes through the
// mailbox: progress first, then exactly one completion or error.
func (c *Controller) fetch(ctx context.Context, req MeshLoadRequest) {
	desc, err := c.fetcher.Load(ctx, req.URL, func(p loader.Progress) {
		c.mail.post(message{event: &loadEvent{token: req.Token, progress: &p}})
	})
	c.mail.post(message{event: &loadEvent{token: req.Token, done: true, desc: desc, err: err}})
}

// handleLoadEvent applies one mailbox event on the UI thread.
func (c *Controller) handleLoadEvent(ev *loadEvent) {
	if c.swap.active == nil || ev.token != c.swap.active.req.Token {
		return
	}
	req := c.swap.active.req

	if !ev.done {
		if pct, ok := c.swap.progress.update(*ev.progress); ok && c.cb.OnProgress != nil {
			c.cb.OnProgress(pct)
		}
		return
	}

	c.swap.active.cancel()
	c.swap.active = nil

	if ev.err == nil && ev.desc == nil {
		ev.err = fmt.Errorf("%w: no mesh returned", loader.ErrParse)
	}
	if ev.err != nil {
		c.fail(req, ev.err)
		return
	}
	if err := c.install(req, ev.desc); err != nil {
		c.fail(req, err)
		return
	}
	if c.cb.OnComplete != nil {
		c.cb.OnComplete()
	}
}

// install normalizes desc and replaces the current mesh or placeholder.
func (c *Controller) install(req MeshLoadRequest, desc *mesh.Descriptor) error {
	s := c.session
	node, err := normalize.Normalize(desc, c.opts.Mode, c.opts.Normalize)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", req.URL, err)
	}
	if err := node.Upload(s.surface.Device()); err != nil {
		return fmt.Errorf("upload %s: %w", req.URL, err)
	}

	showBounds := s.bounds != nil
	c.hideBounds()
	c.dropMesh()
	if s.placeholder != nil {
		s.scene.Remove(s.placeholder)
		s.placeholder.Release()
		s.placeholder = nil
	}

	node.Name = req.URL
	s.scene.Add(node)
	s.mesh = node
	s.meshURL = req.URL
	c.state = StateDisplaying
	c.resetView()
	if showBounds {
		c.showBounds()
	}

	c.log.Info("mesh installed",
		zap.String("url", req.URL),
		zap.Int("parts", len(node.Parts)),
		zap.Float32("scale", node.Transform.Scale))
	return nil
}

// fail puts the placeholder back and then reports err. OnError runs last so
// the host may call LoadMesh from it against a settled Ready controller.
func (c *Controller) fail(req MeshLoadRequest, err error) {
	c.log.Warn("mesh load failed", zap.String("url", req.URL), zap.Error(err))
	if c.state != StateDisposed {
		c.hideBounds()
		c.dropMesh()
		c.restorePlaceholder()
		c.state = StateReady
	}
	if c.cb.OnError != nil {
		c.cb.OnError(err.Error())
	}
}

// dropMesh detaches and releases the installed mesh.
func (c *Controller) dropMesh() {
	s := c.session
	if s.mesh == nil {
		return
	}
	s.scene.Remove(s.mesh)
	s.mesh.Release()
	s.mesh = nil
	s.meshURL = ""
}
