// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// candidateRow accumulates every list position a candidate item carries
// while candidates are being assembled, before scoring.
type candidateRow struct {
	itemID string
	near   *recostore.NearEntry
	nearRk int
	top    map[string]recostore.NearEntry
	topRk  map[string]int
	pop    map[string]recostore.NearEntry
	popRk  map[string]int
}

func (r *candidateRow) importance() float64 {
	near := 0.0
	if r.near != nil {
		near = r.near.Score
	}
	var topSum, popSum float64
	for _, e := range r.top {
		topSum += e.Score * e.Score
	}
	for _, e := range r.pop {
		popSum += e.Score * e.Score
	}
	return math.Sqrt((near*near+1)*(topSum+1)*(popSum+1)) - 1
}

func (r *candidateRow) signals() CandidateSignals {
	signals := CandidateSignals{}
	if r.near != nil {
		signals.Near = &CandidatePosition{Value: r.near.Score, Rank: r.nearRk}
	}
	if len(r.top) > 0 {
		signals.Top = make(map[string]CandidatePosition, len(r.top))
		for scope, e := range r.top {
			signals.Top[scope] = CandidatePosition{Value: e.Score, Rank: r.topRk[scope]}
		}
	}
	if len(r.pop) > 0 {
		signals.Pop = make(map[string]CandidatePosition, len(r.pop))
		for scope, e := range r.pop {
			signals.Pop[scope] = CandidatePosition{Value: e.Score, Rank: r.popRk[scope]}
		}
	}
	return signals
}

// SelectCandidates assembles up to maxCandidateCount ranked-list-derived
// candidates for (part, currentID), or returns the whitelist verbatim
// (truncated to maxCandidateCount) when one is supplied.
func SelectCandidates(ctx context.Context, store recostore.Store, cfg *Config, part, currentID string, whitelist []string) ([]ScoredCandidate, error) {
	if len(whitelist) > 0 {
		out := make([]ScoredCandidate, 0, min(len(whitelist), cfg.MaxCandidateCount))
		for _, id := range whitelist {
			if len(out) >= cfg.MaxCandidateCount {
				break
			}
			out = append(out, ScoredCandidate{ItemID: id})
		}
		return out, nil
	}

	table := make(map[string]*candidateRow)
	rowFor := func(id string) *candidateRow {
		row, ok := table[id]
		if !ok {
			row = &candidateRow{itemID: id}
			table[id] = row
		}
		return row
	}

	near, err := store.FindItemsNear(ctx, part, currentID)
	if err != nil {
		return nil, err
	}
	for i, e := range near {
		e := e
		row := rowFor(e.ItemID)
		row.near = &e
		row.nearRk = i
	}

	for _, scope := range decay.Scopes {
		top, err := store.FindItemsTop(ctx, part, scope)
		if err != nil {
			return nil, err
		}
		for i, e := range top {
			row := rowFor(e.ItemID)
			if row.top == nil {
				row.top = make(map[string]recostore.NearEntry)
				row.topRk = make(map[string]int)
			}
			row.top[scope.String()] = e
			row.topRk[scope.String()] = i
		}

		pop, err := store.FindItemsPopular(ctx, part, scope)
		if err != nil {
			return nil, err
		}
		for i, e := range pop {
			row := rowFor(e.ItemID)
			if row.pop == nil {
				row.pop = make(map[string]recostore.NearEntry)
				row.popRk = make(map[string]int)
			}
			row.pop[scope.String()] = e
			row.popRk[scope.String()] = i
		}
	}

	bound := 2 * cfg.MaxCandidateCount
	rows := make([]*candidateRow, 0, len(table))
	for _, row := range table {
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].importance() > rows[j].importance()
	})
	if len(rows) > bound {
		rows = rows[:bound]
	}
	if len(rows) > cfg.MaxCandidateCount {
		rows = rows[:cfg.MaxCandidateCount]
	}

	out := make([]ScoredCandidate, len(rows))
	for i, row := range rows {
		out[i] = ScoredCandidate{ItemID: row.itemID, Signals: row.signals()}
	}
	return out, nil
}
