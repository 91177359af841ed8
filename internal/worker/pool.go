package worker

import (
	"context"
	"sync"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
	"go.uber.org/zap"
)

// DefaultScanInterval - период сканирования просроченных обменов
const DefaultScanInterval = time.Minute

// Pool представляет пул воркеров, переводящих просроченные обмены в статус expired
type Pool struct {
	workers        int
	queue          chan int64
	redemptionRepo domain.RedemptionRepository
	logger         *zap.Logger
	wg             sync.WaitGroup
	scanInterval   time.Duration
	now            func() time.Time
}

// NewPool создает новый worker pool
func NewPool(
	workers int,
	queueSize int,
	scanInterval time.Duration,
	redemptionRepo domain.RedemptionRepository,
	logger *zap.Logger,
) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if scanInterval <= 0 {
		scanInterval = DefaultScanInterval
	}
	return &Pool{
		workers:        workers,
		queue:          make(chan int64, queueSize),
		redemptionRepo: redemptionRepo,
		logger:         logger,
		scanInterval:   scanInterval,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает worker pool
func (p *Pool) Start(ctx context.Context) {
	// Запускаем воркеры
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	// Запускаем сканер просроченных обменов
	p.wg.Add(1)
	go p.scanner(ctx)
}

// Stop останавливает worker pool и ждет завершения воркеров.
// Контекст, переданный в Start, должен быть отменен до вызова Stop.
func (p *Pool) Stop() {
	p.wg.Wait()
}

// worker обрабатывает обмены из очереди
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Info("worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping", zap.Int("worker_id", id))
			return
		case redemptionID := <-p.queue:
			p.expire(ctx, redemptionID)
		}
	}
}

// scanner периодически ищет обмены с истекшим сроком
func (p *Pool) scanner(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("scanner stopping")
			return
		case <-ticker.C:
			p.scanExpired(ctx)
		}
	}
}

// scanExpired отправляет просроченные обмены в очередь
func (p *Pool) scanExpired(ctx context.Context) {
	// Берем не больше, чем помещается в очередь, остальное заберем на следующем тике
	ids, err := p.redemptionRepo.ListExpiredRedemptions(ctx, p.now(), cap(p.queue))
	if err != nil {
		p.logger.Error("failed to list expired redemptions", zap.Error(err))
		return
	}

	for _, id := range ids {
		select {
		case p.queue <- id:
		case <-ctx.Done():
			return
		default:
			// Очередь заполнена, пропускаем
			p.logger.Warn("queue is full, skipping redemption", zap.Int64("redemption_id", id))
		}
	}
}

// expire переводит один обмен в статус expired
func (p *Pool) expire(ctx context.Context, redemptionID int64) {
	p.logger.Debug("expiring redemption", zap.Int64("redemption_id", redemptionID))

	if err := p.redemptionRepo.MarkRedemptionExpired(ctx, redemptionID); err != nil {
		p.logger.Error("failed to mark redemption expired",
			zap.Int64("redemption_id", redemptionID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("redemption expired", zap.Int64("redemption_id", redemptionID))
}
