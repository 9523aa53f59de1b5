// Package staging places ingested products into a room photograph, first
// through the remote provider and otherwise with the local compositor.
package staging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/compositor"
	"github.com/raushankrgupta/dekor-stager/generator"
	"github.com/raushankrgupta/dekor-stager/ingest"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateValidating      State = "VALIDATING"
	StateResolvingImages State = "RESOLVING_IMAGES"
	StateRemoteAttempt   State = "REMOTE_ATTEMPT"
	StateRemoteSuccess   State = "REMOTE_SUCCESS"
	StateLocalFallback   State = "LOCAL_FALLBACK"
	StatePersisting      State = "PERSISTING"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

const defaultRemoteTimeout = 5 * time.Minute

type Request struct {
	RoomRef      string               `json:"roomPath"`
	RoomAnalysis *models.RoomAnalysis `json:"roomAnalysis,omitempty"`
	Selections   []models.Selection   `json:"selections"`
}

// Fallback produces a staged image without the remote provider.
type Fallback interface {
	Stage(ctx context.Context, roomRef string, productRefs []string) (string, error)
}

type Options struct {
	// Editor may be nil, in which case every request uses the fallback.
	Editor        generator.ImageEditor
	Fallback      Fallback
	HTTPClient    *http.Client
	RemoteTimeout time.Duration
	Logger        *logger.Logger
}

type Orchestrator struct {
	store         *storage.AssetStore
	editor        generator.ImageEditor
	fallback      Fallback
	client        *http.Client
	remoteTimeout time.Duration
	log           *logger.Logger
	now           func() time.Time
}

func NewOrchestrator(store *storage.AssetStore, opts Options) *Orchestrator {
	log := logger.OrNop(opts.Logger)
	fallback := opts.Fallback
	if fallback == nil {
		fallback = compositor.New(store, log)
	}
	timeout := opts.RemoteTimeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &Orchestrator{
		store:         store,
		editor:        opts.Editor,
		fallback:      fallback,
		client:        opts.HTTPClient,
		remoteTimeout: timeout,
		log:           log.With("service", "StagingOrchestrator"),
		now:           time.Now,
	}
}

// resolved holds the inputs of one staging run.
type resolved struct {
	productIDs  []string
	productRefs []string
	room        []byte
	products    [][]byte
}

// Stage runs one staging request to completion. The StageRecord write is the
// only commit; on any error nothing is recorded.
func (o *Orchestrator) Stage(ctx context.Context, req Request) (*models.StageRecord, error) {
	stageID := storage.NewID("stage")
	log := o.log.With("stage_id", stageID)
	enter := func(s State) { log.Info("staging transition", "state", string(s)) }
	fail := func(err error) (*models.StageRecord, error) {
		log.Warn("staging transition", "state", string(StateFailed), "kind", string(apperr.KindOf(err)), "error", err)
		return nil, err
	}

	enter(StateValidating)
	if strings.TrimSpace(req.RoomRef) == "" || len(req.Selections) == 0 {
		return fail(apperr.Validation("Missing roomPath or selections."))
	}

	enter(StateResolvingImages)
	in, err := o.resolve(ctx, req)
	if err != nil {
		return fail(err)
	}

	prompt := BuildStagingPrompt()

	enter(StateRemoteAttempt)
	generatorUsed := models.GeneratorRemote
	confidence := models.RemoteConfidence
	outputRef, err := o.remoteAttempt(ctx, prompt, in)
	if err == nil {
		enter(StateRemoteSuccess)
	} else {
		log.Warn("remote generation failed, using local fallback", "error", err)
		enter(StateLocalFallback)
		generatorUsed = models.GeneratorLocalFallback
		confidence = models.FallbackConfidence
		outputRef, err = o.fallback.Stage(ctx, req.RoomRef, in.productRefs)
		if errors.Is(err, compositor.ErrNotImage) {
			return fail(apperr.Validation("Room or product image is not a supported image."))
		}
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				err = apperr.New(apperr.KindInternal, "Failed to produce staged image.", err)
			}
			return fail(err)
		}
	}

	enter(StatePersisting)
	record := &models.StageRecord{
		ID:             stageID,
		CreatedAt:      o.now().UTC(),
		ProductIDs:     in.productIDs,
		RoomImageRef:   req.RoomRef,
		OutputImageRef: outputRef,
		Prompt:         prompt,
		Generator:      generatorUsed,
		Confidence:     confidence,
	}
	if _, err := o.store.SaveJSON(ctx, storage.CategoryStagingMeta, stageID, record); err != nil {
		return fail(apperr.Persistence("Failed to save staging record.", err))
	}

	enter(StateDone)
	return record, nil
}

// resolve loads each distinct product once, concurrently, then maps every
// selection onto its processed image in request order.
func (o *Orchestrator) resolve(ctx context.Context, req Request) (*resolved, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, sel := range req.Selections {
		if strings.TrimSpace(sel.ProductID) == "" || strings.TrimSpace(sel.ImageID) == "" {
			return nil, apperr.Validation("Every selection needs a productId and an imageId.")
		}
		if !seen[sel.ProductID] {
			seen[sel.ProductID] = true
			ids = append(ids, sel.ProductID)
		}
	}

	var mu sync.Mutex
	products := make(map[string]*models.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			p, err := ingest.Product(gctx, o.store, id)
			if storage.IsNotFound(err) {
				return apperr.MissingAsset(id)
			}
			if err != nil {
				return apperr.Persistence("Failed to read product metadata.", err)
			}
			mu.Lock()
			products[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := &resolved{productIDs: ids}
	for _, sel := range req.Selections {
		img, ok := products[sel.ProductID].Image(sel.ImageID)
		if !ok || img.ProcessedRef == "" {
			return nil, apperr.MissingAsset(sel.ProductID)
		}
		data, err := o.store.Read(ctx, img.ProcessedRef)
		if storage.IsNotFound(err) {
			return nil, apperr.MissingAsset(sel.ProductID)
		}
		if err != nil {
			return nil, apperr.Persistence("Failed to read product image.", err)
		}
		in.productRefs = append(in.productRefs, img.ProcessedRef)
		in.products = append(in.products, data)
	}

	room, err := o.store.Read(ctx, req.RoomRef)
	if storage.IsNotFound(err) {
		return nil, apperr.New(apperr.KindMissingAsset, fmt.Sprintf("Room image not found: %s", req.RoomRef), nil)
	}
	if err != nil {
		return nil, apperr.Persistence("Failed to read room image.", err)
	}
	in.room = room
	return in, nil
}

// remoteAttempt asks the provider for one staged image and stores it. Every
// failure is reported as RemoteUnavailable.
func (o *Orchestrator) remoteAttempt(ctx context.Context, prompt string, in *resolved) (string, error) {
	if o.editor == nil {
		return "", apperr.RemoteUnavailable("remote provider not configured", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, o.remoteTimeout)
	defer cancel()

	images := make([]generator.Image, 0, len(in.products)+1)
	images = append(images, generator.Image{Name: "room.png", ContentType: "image/png", Data: in.room})
	for i, data := range in.products {
		images = append(images, generator.Image{Name: fmt.Sprintf("product-%d.png", i+1), ContentType: "image/png", Data: data})
	}

	data, err := runEdit(ctx, o.editor, o.client, generator.EditRequest{Prompt: prompt, Images: images})
	if err != nil {
		return "", apperr.RemoteUnavailable("remote generation failed", err)
	}
	ref, err := o.store.Save(ctx, storage.CategoryStagingOutput, storage.NewID("staged")+".png", data)
	if err != nil {
		return "", apperr.RemoteUnavailable("storing remote output failed", err)
	}
	return ref, nil
}

// runEdit calls the editor, downloads the first output and normalizes it to PNG.
func runEdit(ctx context.Context, editor generator.ImageEditor, client *http.Client, req generator.EditRequest) ([]byte, error) {
	res, err := editor.EditImage(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Outputs) == 0 {
		return nil, generator.ErrNoOutput
	}
	raw, err := generator.Fetch(ctx, client, res.Outputs[0])
	if err != nil {
		return nil, err
	}
	return compositor.NormalizePNG(raw)
}
