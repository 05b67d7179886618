package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services"
)

// TenderWorker runs the registry housekeeping loop: it closes tenders whose
// closing date passed and warns owners of still-draft bids shortly before the
// deadline.
type TenderWorker struct {
	tenders       repositories.TenderRepository
	bids          repositories.BidRepository
	notifications services.NotificationService

	sweepInterval time.Duration
	warnWindow    time.Duration

	// warned remembers which tenders already produced a closing-soon batch.
	// In-memory on purpose: a restart re-warns at worst once more.
	warned   map[string]bool
	warnedMu sync.Mutex
}

func NewTenderWorker(
	tenders repositories.TenderRepository,
	bids repositories.BidRepository,
	notifications services.NotificationService,
	sweepInterval, warnWindow time.Duration,
) *TenderWorker {
	return &TenderWorker{
		tenders:       tenders,
		bids:          bids,
		notifications: notifications,
		sweepInterval: sweepInterval,
		warnWindow:    warnWindow,
		warned:        make(map[string]bool),
	}
}

func (w *TenderWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *TenderWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	logger.WorkerLog("tender_worker", "started",
		"sweep_interval", w.sweepInterval, "warn_window", w.warnWindow)

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog("tender_worker", "stopped")
			return
		case <-ticker.C:
			w.Sweep(time.Now())
		}
	}
}

// Sweep performs one housekeeping pass. Exposed for tests.
func (w *TenderWorker) Sweep(now time.Time) {
	closed, err := w.tenders.CloseExpired(now)
	if err != nil {
		logger.WorkerLog("tender_worker", "auto-close failed", "error", err)
	} else if closed > 0 {
		logger.WorkerLog("tender_worker", "auto-closed expired tenders", "count", closed)
	}

	w.warnClosingSoon(now)
}

// warnClosingSoon notifies owners of draft bids on tenders entering the warn
// window, once per tender.
func (w *TenderWorker) warnClosingSoon(now time.Time) {
	tenders, err := w.tenders.FindClosingSoon(now, w.warnWindow)
	if err != nil {
		logger.WorkerLog("tender_worker", "closing-soon scan failed", "error", err)
		return
	}

	pending := make([]models.Tender, 0, len(tenders))
	tenderIDs := make([]string, 0, len(tenders))
	w.warnedMu.Lock()
	for _, t := range tenders {
		if !w.warned[t.ID] {
			pending = append(pending, t)
			tenderIDs = append(tenderIDs, t.ID)
		}
	}
	w.warnedMu.Unlock()

	if len(pending) == 0 {
		return
	}

	drafts, err := w.bids.FindDraftsByTenderIDs(tenderIDs)
	if err != nil {
		logger.WorkerLog("tender_worker", "draft lookup failed", "error", err)
		return
	}

	byTender := make(map[string][]models.Bid)
	for _, bid := range drafts {
		byTender[bid.TenderID] = append(byTender[bid.TenderID], bid)
	}

	for _, tender := range pending {
		for _, bid := range byTender[tender.ID] {
			message := fmt.Sprintf("The tender %q closes at %s and your bid is still a draft. Submit it before the deadline.",
				tender.Title, tender.ClosingAt.Format(time.RFC3339))
			if err := w.notifications.Append(bid.BidderID, models.NotificationTypeWarning,
				"Tender closing soon", message,
				services.WithTender(tender.ID), services.WithBid(bid.ID)); err != nil {
				logger.WorkerLog("tender_worker", "closing-soon notification failed",
					"tender_id", tender.ID, "bid_id", bid.ID, "error", err)
				continue
			}
		}

		w.warnedMu.Lock()
		w.warned[tender.ID] = true
		w.warnedMu.Unlock()
	}
}
