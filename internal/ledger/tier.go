// Package ledger содержит правила программы лояльности: начисление баллов,
// расчет уровня, переводы, обмен баллов на награды и агрегаты для дашборда.
// Функции пакета не обращаются к хранилищу и не зависят от времени системы.
package ledger

import (
	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// SilverThreshold - минимальный объем переводов для уровня Silver
	SilverThreshold = decimal.NewFromInt(20000)
	// GoldThreshold - минимальный объем переводов для уровня Gold
	GoldThreshold = decimal.NewFromInt(50000)
	// PointUnit - сумма перевода, за которую начисляется один балл
	PointUnit = decimal.NewFromInt(100)
)

// TierOf возвращает уровень для суммарного объема переводов.
// Граничное значение относится к более высокому уровню.
func TierOf(totalSent decimal.Decimal) domain.Tier {
	switch {
	case totalSent.GreaterThanOrEqual(GoldThreshold):
		return domain.TierGold
	case totalSent.GreaterThanOrEqual(SilverThreshold):
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}

// PointsFor возвращает количество баллов за перевод: floor(amount / 100)
func PointsFor(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}
	return amount.Div(PointUnit).Floor().IntPart()
}

// TierProgress возвращает прогресс до следующего уровня в диапазоне [0, 1].
// Для Gold прогресс всегда равен 1.
func TierProgress(totalSent decimal.Decimal) float64 {
	var next decimal.Decimal
	switch TierOf(totalSent) {
	case domain.TierGold:
		return 1.0
	case domain.TierSilver:
		next = GoldThreshold
	default:
		next = SilverThreshold
	}

	progress, _ := totalSent.Div(next).Float64()
	if progress > 1.0 {
		return 1.0
	}
	if progress < 0 {
		return 0
	}
	return progress
}
