// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package recommend ranks gallery items for the "for you" view.
//
// # Scoring
//
// Each item gets three terms in [0, 1], combined with normalized weights:
//
//   - Recency: exp(-ln2 * age / halfLife), so an item one half-life old scores 0.5.
//   - Engagement: raw / (raw + saturation), where raw is the weighted sum of
//     likes, views and shares.
//   - Personalization: the boost of the item's category among the viewer's top
//     categories. With n top categories the i-th (0-based) earns (n-i)/n.
//
// A viewer with no history gets a personalization term of zero for every item,
// which reduces the ranking to popularity and recency.
//
// # Ranking
//
// Rank orders by score, then newer createdAt, then ID. Duplicate IDs are
// ranked once and the result never exceeds k.
//
// # History
//
// HistoryStore keeps a bounded ring of view samples per viewer in memory
// (100 samples, 30 day window by default). It is best-effort and is lost on
// restart.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetCandidateSource(recommend.CandidateFunc(loadItems))
//	engine.Track(viewerKey, media.ViewSample{ItemID: id, Category: cat, DwellSeconds: 12})
//	resp, err := engine.Recommend(ctx, recommend.Request{ViewerKey: viewerKey, K: 12})
package recommend
