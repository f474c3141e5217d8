package stamp

import (
	"gocomment/event"
	"gocomment/internal/logging"
	"gocomment/internal/recent"
)

// Sink receives downloaded images. PostSpawn must not block.
type Sink interface {
	PostSpawn(stampID string, data []byte) bool
}

// Getter runs a download in the background.
type Getter interface {
	Go(url string, done func([]byte, error))
}

// Pipeline admits each stamp id once and forwards its image to a Sink.
type Pipeline struct {
	ids   *recent.IDs
	fetch Getter
	sink  Sink
}

func NewPipeline(ids *recent.IDs, fetch Getter, sink Sink) *Pipeline {
	if ids == nil {
		ids = recent.New(recent.DefaultSize)
	}
	return &Pipeline{ids: ids, fetch: fetch, sink: sink}
}

// IDs returns the cache of admitted ids.
func (p *Pipeline) IDs() *recent.IDs { return p.ids }

// Submit starts a download for s unless its id was seen recently. The id
// is remembered before the download, so a failed fetch is not retried
// when the same stamp is replayed.
func (p *Pipeline) Submit(s event.Stamp) bool {
	if !p.ids.Admit(s.ID) {
		logging.Debug("duplicate stamp ignored", "id", s.ID)
		return false
	}
	p.fetch.Go(s.URL, func(data []byte, err error) {
		if err != nil {
			logging.Warn("stamp download failed", "id", s.ID, "err", err)
			return
		}
		if !p.sink.PostSpawn(s.ID, data) {
			logging.Debug("stamp dropped by overlay", "id", s.ID)
		}
	})
	return true
}
