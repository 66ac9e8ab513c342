// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cartographus/internal/cache"
	"github.com/tomtom215/cartographus/internal/recommend/viewcost"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// modelCacheTTL bounds how long a resolved model is reused before
// re-fetching from the store. It is a safety net for the natskv
// backend, where multiple API instances can share one store and a
// training tick run by a different instance has no in-process signal
// to invalidate on; the instance that actually promotes a model clears
// its own cache immediately instead of waiting out the TTL.
const modelCacheTTL = 30 * time.Second

// RecommendRequest is one POST /api/recommend call.
type RecommendRequest struct {
	Part      string
	User      string
	Current   string
	Whitelist []string
	Count     int
}

// RecommendResult is one scored item in a RecommendResponse.
type RecommendResult struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RecommendResponse is the body returned from a recommendation request.
type RecommendResponse struct {
	Result     []RecommendResult `json:"result"`
	ActivityID string             `json:"id"`
}

// ViewRequest is one view/feedback event.
type ViewRequest struct {
	Part       string
	User       string
	Item       string
	ActivityID string
}

// Metrics is a snapshot of the engine's running counters.
type Metrics struct {
	RequestCount uint64
	ViewCount    uint64
	ErrorCount   uint64
	TrainCount   uint64
}

// TrainingStatus reports the state of the background training loop.
type TrainingStatus struct {
	InProgress    bool
	LastTrainedAt time.Time
	ModelVersion  uint64
}

// Engine is the recommendation core: candidate selection, feature
// extraction, linear scoring, exploratory swap, and activity logging,
// running against a pluggable recostore.Store.
//
// Safe for concurrent use. Training acquires an exclusive lock; request
// handling only reads the store and the model, both of which handle
// their own concurrency internally.
type Engine struct {
	store  recostore.Store
	cfg    *Config
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	viewCost    *viewcost.Estimator
	lastViewAt  atomic.Int64 // UnixMilli of the previous view, 0 if none yet

	modelCache cache.Cacher

	trainMu      sync.Mutex
	trainLimiter *rate.Limiter
	training     atomic.Bool
	modelVer     atomic.Uint64
	lastTrained  atomic.Int64

	requestCount atomic.Uint64
	viewCountN   atomic.Uint64
	errorCount   atomic.Uint64
	trainCount   atomic.Uint64
}

// NewEngine constructs an Engine over store, configured by cfg.
func NewEngine(store recostore.Store, cfg *Config, logger zerolog.Logger) *Engine {
	return &Engine{
		store:        store,
		cfg:          cfg,
		logger:       logger.With().Str("component", "recommend_engine").Logger(),
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		viewCost:     viewcost.NewEstimator(),
		modelCache:   cache.NewTTL(modelCacheTTL),
		trainLimiter: rate.NewLimiter(trainLimit(cfg.Training.MinInterval), 1),
	}
}

// trainLimit converts a training MinInterval into the equivalent token
// rate: one token every minInterval, no limit at all if minInterval is
// zero.
func trainLimit(minInterval time.Duration) rate.Limit {
	if minInterval <= 0 {
		return rate.Inf
	}
	return rate.Every(minInterval)
}

// Recommend runs the candidate-selection, scoring, exploration, and
// activity-logging pipeline for one request.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	e.requestCount.Add(1)
	logger := e.logger.With().Str("part", req.Part).Str("user", req.User).Str("current", req.Current).Logger()

	current, err := e.resolveCurrentItem(ctx, req.Part, req.Current)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	candidates, err := SelectCandidates(ctx, e.store, e.cfg, req.Part, req.Current, req.Whitelist)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("select candidates: %w", err)
	}

	model, err := e.resolveModel(ctx, req.Part)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("resolve model: %w", err)
	}

	scored, visible, err := e.scoreCandidates(ctx, req.Part, current, candidates, model)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	scored = e.applyExploration(scored, req.Count)

	count := req.Count
	if count > len(scored) {
		count = len(scored)
	}
	scored = scored[:count]

	visibleByID := make(map[string]VisibleExample, len(visible))
	for _, v := range visible {
		visibleByID[v.ItemID] = v
	}

	activityID := uuid.NewString()
	truncatedVisible := make([]VisibleExample, 0, len(scored))
	result := make([]RecommendResult, 0, len(scored))
	for _, sc := range scored {
		v, ok := visibleByID[sc.ItemID]
		if !ok {
			v = VisibleExample{ItemID: sc.ItemID, Score: sc.Score, Signals: sc.Signals}
		}
		truncatedVisible = append(truncatedVisible, v)
		result = append(result, RecommendResult{ID: sc.ItemID, Score: sc.Score})
	}

	activity := Activity{
		ID:        activityID,
		Part:      req.Part,
		Current:   current,
		Visible:   truncatedVisible,
		CreatedAt: time.Now(),
	}
	if err := e.store.Save(ctx, activity, e.cfg.Activity.UnchosenTTL); err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("save activity: %w", err)
	}

	logger.Debug().Int("result_count", len(result)).Str("activity_id", activityID).Msg("recommendation served")
	return &RecommendResponse{Result: result, ActivityID: activityID}, nil
}

func (e *Engine) resolveCurrentItem(ctx context.Context, part, id string) (Item, error) {
	item, ok, err := e.store.FindItem(ctx, part, id)
	if err != nil {
		return Item{}, fmt.Errorf("find current item: %w", err)
	}
	if ok {
		return item, nil
	}
	// A missing current item is synthesized rather than treated as an error.
	return Item{ID: id, Part: part, Views: 1}, nil
}

func (e *Engine) resolveModel(ctx context.Context, part string) (Model, error) {
	cacheKey := "model:" + part
	if cached, ok := e.modelCache.Get(cacheKey); ok {
		return cached.(Model), nil
	}

	model, err := e.fetchModel(ctx, part)
	if err != nil {
		return Model{}, err
	}
	e.modelCache.Set(cacheKey, model)
	return model, nil
}

func (e *Engine) fetchModel(ctx context.Context, part string) (Model, error) {
	if m, ok, err := e.store.FindModel(ctx, part); err != nil {
		return Model{}, err
	} else if ok {
		return m, nil
	}
	return e.store.FindDefaultModel(ctx)
}

func (e *Engine) scoreCandidates(ctx context.Context, part string, current Item, candidates []ScoredCandidate, model Model) ([]ScoredCandidate, []VisibleExample, error) {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ItemID
	}
	items, err := e.store.FindItemsBatch(ctx, part, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("find candidate items: %w", err)
	}
	itemByID := make(map[string]Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	scored := make([]ScoredCandidate, len(candidates))
	visible := make([]VisibleExample, len(candidates))
	for i, c := range candidates {
		candItem := itemByID[c.ItemID]
		features := ExtractFeatures(current, candItem, c.Signals, e.cfg.MetaKeys)
		score := Score(features, model.Weights)
		scored[i] = ScoredCandidate{ItemID: c.ItemID, Score: score, Signals: c.Signals}
		visible[i] = VisibleExample{ItemID: c.ItemID, Item: candItem, Score: score, Signals: c.Signals}
	}

	sort.SliceStable(scored, func(i, j int) bool { return totalOrderGreater(scored[i].Score, scored[j].Score) })
	return scored, visible, nil
}

// applyExploration performs the upgrade-chance swap: with probability
// cfg.UpgradeChance, and only when the tail extends past count, one
// random tail entry is promoted into a random prefix position.
func (e *Engine) applyExploration(scored []ScoredCandidate, count int) []ScoredCandidate {
	if count >= len(scored) {
		return scored
	}

	e.rngMu.Lock()
	roll := e.rng.Float64()
	var tailIdx, prefixIdx int
	if roll < e.cfg.UpgradeChance {
		tailIdx = count + e.rng.Intn(len(scored)-count)
		prefixIdx = e.rng.Intn(count)
	}
	e.rngMu.Unlock()

	if roll < e.cfg.UpgradeChance {
		scored[prefixIdx], scored[tailIdx] = scored[tailIdx], scored[prefixIdx]
	}
	return scored
}

// totalOrderGreater mirrors ranklist's tie/NaN-tolerant descending
// comparator so request-time scoring sorts consistently with ranked-list
// compaction.
func totalOrderGreater(a, b float64) bool {
	if a != a || b != b {
		return false
	}
	return a > b
}

// View processes a view/feedback event: co-occurrence update, popularity
// counters, history push, and optional activity choice.
func (e *Engine) View(ctx context.Context, req ViewRequest) error {
	e.viewCountN.Add(1)

	user, err := e.store.FindUser(ctx, req.Part, req.User)
	if err != nil {
		e.errorCount.Add(1)
		return fmt.Errorf("find user: %w", err)
	}

	if len(user.History) > 0 {
		batch := []recostore.BulkNear{{ItemID: req.Item, Targets: user.History}}
		for _, h := range user.History {
			batch = append(batch, recostore.BulkNear{ItemID: h, Targets: []string{req.Item}})
		}
		if err := e.store.AddBulkNear(ctx, req.Part, batch, 1.0); err != nil {
			e.errorCount.Add(1)
			return fmt.Errorf("add bulk near: %w", err)
		}
	}

	viewCost := e.observeViewCost()
	if err := e.store.View(ctx, req.Part, req.Item, viewCost); err != nil {
		e.errorCount.Add(1)
		return fmt.Errorf("record view: %w", err)
	}

	if err := e.store.PushHistory(ctx, req.Part, req.User, req.Item, e.cfg.UserHistoryLength); err != nil {
		e.errorCount.Add(1)
		return fmt.Errorf("push history: %w", err)
	}

	if req.ActivityID != "" {
		if err := e.store.Choose(ctx, req.Part, req.ActivityID, []string{req.Item}, e.cfg.Activity.ChosenTTL); err != nil {
			e.errorCount.Add(1)
			return fmt.Errorf("choose activity: %w", err)
		}
	}

	return nil
}

func (e *Engine) observeViewCost() float64 {
	now := time.Now().UnixMilli()
	prev := e.lastViewAt.Swap(now)
	if prev != 0 {
		e.viewCost.Observe(float64(now - prev))
	}
	return e.viewCost.ViewCost(e.cfg.ViewCostWindowMS)
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	var lastTrained time.Time
	if ms := e.lastTrained.Load(); ms != 0 {
		lastTrained = time.UnixMilli(ms)
	}
	return TrainingStatus{
		InProgress:    e.training.Load(),
		LastTrainedAt: lastTrained,
		ModelVersion:  e.modelVer.Load(),
	}
}

// GetMetrics returns a snapshot of the engine's running counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		ViewCount:    e.viewCountN.Load(),
		ErrorCount:   e.errorCount.Load(),
		TrainCount:   e.trainCount.Load(),
	}
}

// GetConfig returns the engine's configuration.
func (e *Engine) GetConfig() *Config {
	return e.cfg
}
