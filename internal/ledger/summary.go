package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
)

// Dashboard собирает сводку по счету из истории операций.
// Баллы за месяц считаются с первого числа текущего месяца по UTC,
// в том же поясе, в котором хранится created_at.
func Dashboard(account *domain.Account, history []*domain.Transaction, now time.Time, recent int) *domain.Summary {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b *domain.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var monthly, total int64
	for _, tx := range sorted {
		if tx.PointsEarned <= 0 {
			continue
		}
		total += tx.PointsEarned
		if !tx.CreatedAt.Before(monthStart) {
			monthly += tx.PointsEarned
		}
	}

	if recent < 0 {
		recent = 0
	}
	recentTxs := make([]*domain.Transaction, 0, min(recent, len(sorted)))
	recentTxs = append(recentTxs, sorted[:min(recent, len(sorted))]...)

	return &domain.Summary{
		Account:            account,
		Tier:               TierOf(account.TotalSent),
		RecentTransactions: recentTxs,
		MonthlyPoints:      monthly,
		TotalEarned:        total,
		TierProgress:       TierProgress(account.TotalSent),
	}
}

// Leaderboard возвращает первые limit активных счетов по убыванию баллов.
// При равенстве баллов сохраняется исходный порядок.
func Leaderboard(accounts []*domain.Account, limit int) []domain.LeaderboardEntry {
	active := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive {
			active = append(active, a)
		}
	}

	slices.SortStableFunc(active, func(a, b *domain.Account) int {
		return cmp.Compare(b.Points, a.Points)
	})

	if limit < 0 {
		limit = 0
	}
	active = active[:min(limit, len(active))]

	entries := make([]domain.LeaderboardEntry, 0, len(active))
	for i, a := range active {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:   i + 1,
			Name:   a.Name,
			Points: a.Points,
			Tier:   TierOf(a.TotalSent),
		})
	}
	return entries
}
