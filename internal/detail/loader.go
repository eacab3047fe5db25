package detail

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

type Source string

const (
	SourceRemote   Source = "remote"
	SourceSnapshot Source = "snapshot"
	SourceFallback Source = "fallback"
)

type Fetcher interface {
	GetTender(ctx context.Context, id string) (model.Tender, error)
}

// SnapshotStore keeps the last full record fetched for each tender.
type SnapshotStore interface {
	Save(ctx context.Context, t model.Tender) error
	Get(ctx context.Context, id string) (*model.Tender, error)
}

// Loader fetches the full record for the detail view. The fetch is an
// enrichment: when it fails the loader degrades to a stored snapshot and
// then to the partial record the caller already holds.
type Loader struct {
	fetcher Fetcher
	store   SnapshotStore
	log     zerolog.Logger
}

// NewLoader accepts a nil store.
func NewLoader(fetcher Fetcher, store SnapshotStore, log zerolog.Logger) *Loader {
	return &Loader{fetcher: fetcher, store: store, log: log}
}

func (l *Loader) Load(ctx context.Context, id string, fallback *model.Tender) (model.Tender, Source, error) {
	tender, err := l.fetcher.GetTender(ctx, id)
	if err == nil {
		if l.store != nil {
			if saveErr := l.store.Save(ctx, tender); saveErr != nil {
				l.log.Warn().Err(saveErr).Str("tender_id", id).Msg("failed to store tender snapshot")
			}
		}
		return tender, SourceRemote, nil
	}
	if errors.Is(err, context.Canceled) {
		return model.Tender{}, "", err
	}

	l.log.Debug().Err(err).Str("tender_id", id).Msg("detail fetch failed, degrading")

	if l.store != nil {
		snapshot, storeErr := l.store.Get(ctx, id)
		switch {
		case storeErr != nil:
			l.log.Warn().Err(storeErr).Str("tender_id", id).Msg("failed to read tender snapshot")
		case snapshot != nil:
			return *snapshot, SourceSnapshot, nil
		}
	}

	if fallback != nil {
		return *fallback, SourceFallback, nil
	}
	return model.Tender{}, "", err
}
