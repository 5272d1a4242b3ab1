package receipts

import (
	"context"
	"time"

	"consent-manager/core/consent"

	"go.uber.org/zap"
)

// writeTimeout bounds a single receipt insert.
const writeTimeout = 5 * time.Second

// Recorder is a consent watcher that stores a receipt for every save.
// A plain re-save without changes is not recorded.
type Recorder struct {
	repo     *Repository
	visitor  string
	hostname string
	logger   *zap.Logger
}

// NewRecorder creates a recorder for one visitor.
func NewRecorder(repo *Repository, visitor, hostname string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, visitor: visitor, hostname: hostname, logger: logger}
}

// Update implements consent.Watcher.
func (r *Recorder) Update(m *consent.Manager, kind consent.EventKind, data any) {
	if kind != consent.EventSave {
		return
	}
	event, ok := data.(consent.SaveEvent)
	if !ok {
		return
	}
	if event.Type == "save" && len(event.Changes) == 0 {
		return
	}

	var catalogID string
	if m != nil && m.Config() != nil {
		catalogID = m.Config().ID
	}

	receipt, err := NewReceipt(r.visitor, catalogID, event.Type, r.hostname, event.Consents, event.Changes)
	if err != nil {
		r.logger.Error("Failed to encode receipt", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.repo.Create(ctx, receipt); err != nil {
		r.logger.Error("Failed to store receipt",
			zap.String("visitor", r.visitor),
			zap.String("type", event.Type),
			zap.Error(err))
		return
	}
	r.logger.Debug("Receipt stored", zap.Uint("id", receipt.ID), zap.String("type", event.Type))
}
