// Package merge finds existing catalog records that match freshly fetched
// ones and folds fetched data into them without overwriting user edits.
package merge

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"quarto/internal/catalog"
	"quarto/internal/logging"
	"quarto/internal/match"
)

// DefaultThreshold is the minimum combined score at which an incoming record
// is proposed as an update to an existing one. Identifier matches score
// match.CertainMatch and always clear it.
const DefaultThreshold = 5.0

// Proposal pairs an existing record with an incoming record that scored at
// or above the scan threshold.
type Proposal struct {
	Existing *catalog.Record
	Incoming *catalog.Record
	Score    float64
}

// Scanner matches incoming records against an existing collection.
type Scanner struct {
	threshold float64
	logger    *slog.Logger
}

// NewScanner creates a scanner. A threshold of zero or below selects
// DefaultThreshold.
func NewScanner(threshold float64, logger *slog.Logger) *Scanner {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scanner{
		threshold: threshold,
		logger:    logging.NewComponentLogger(logger, "merge"),
	}
}

// Scan compares every incoming record against every existing record and
// returns one proposal per incoming record: its best-scoring existing
// counterpart, provided the score reaches the threshold. Incoming records
// with no counterpart produce no proposal. Comparison fans out across
// incoming records; scoring itself only reads the records.
func (s *Scanner) Scan(ctx context.Context, existing, incoming []*catalog.Record) ([]Proposal, error) {
	if len(existing) == 0 || len(incoming) == 0 {
		return nil, nil
	}

	var (
		mu        sync.Mutex
		proposals []Proposal
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, in := range incoming {
		in := in
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			best, score := bestMatch(existing, in)
			if best == nil || score < s.threshold {
				return nil
			}
			s.logger.Debug("merge candidate",
				logging.String("existing", best.ID()),
				logging.String("incoming", in.ID()),
				logging.Float64("score", score))
			mu.Lock()
			proposals = append(proposals, Proposal{Existing: best, Incoming: in, Score: score})
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(proposals, func(i, j int) bool {
		if proposals[i].Score != proposals[j].Score {
			return proposals[i].Score > proposals[j].Score
		}
		return proposals[i].Existing.ID() < proposals[j].Existing.ID()
	})
	return proposals, nil
}

func bestMatch(existing []*catalog.Record, in *catalog.Record) (*catalog.Record, float64) {
	var (
		best  *catalog.Record
		score float64
	)
	for _, ex := range existing {
		s := match.SameEntry(ex, in)
		if s > score {
			best, score = ex, s
			if score >= match.CertainMatch {
				break
			}
		}
	}
	return best, score
}

// Apply folds the incoming record into the existing one: fields the existing
// record already populates are kept, empty ones take the incoming value. The
// existing record is mutated in place; it reports whether anything changed.
func Apply(p Proposal) (bool, error) {
	changed := false
	for _, name := range p.Incoming.FieldNames() {
		if p.Existing.Field(name) != "" {
			continue
		}
		value := p.Incoming.Field(name)
		if !p.Existing.Schema().HasField(name) {
			// field introduced by the source; carry the definition across
			if err := p.Existing.Schema().AddField(catalog.Field{Name: name, Title: name, Kind: catalog.KindLine}); err != nil {
				return changed, err
			}
		}
		for _, entry := range catalog.SplitValues(value) {
			p.Existing.Schema().ExtendAllowed(name, entry)
		}
		if err := p.Existing.SetField(name, value); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
