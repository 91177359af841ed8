package ledger

import (
	"strings"

	"github.com/avc/loyalty-rewards/internal/domain"
)

var tierBenefits = map[domain.Tier]domain.TierBenefits{
	domain.TierBronze: {
		Tier:            domain.TierBronze,
		PointMultiplier: 1.0,
		BonusRewards:    []string{},
	},
	domain.TierSilver: {
		Tier:            domain.TierSilver,
		PointMultiplier: 1.2,
		BonusRewards:    []string{"Monthly bonus points"},
		SpecialOffers:   true,
	},
	domain.TierGold: {
		Tier:            domain.TierGold,
		PointMultiplier: 1.5,
		BonusRewards:    []string{"Monthly bonus points", "Exclusive rewards"},
		SpecialOffers:   true,
		PrioritySupport: true,
	},
}

// BenefitsOf возвращает привилегии уровня. Для неизвестного уровня - привилегии Bronze.
func BenefitsOf(tier domain.Tier) domain.TierBenefits {
	b, ok := tierBenefits[tier]
	if !ok {
		b = tierBenefits[domain.TierBronze]
	}
	// Копируем срез, чтобы вызывающий код не изменил таблицу
	b.BonusRewards = append([]string{}, b.BonusRewards...)
	return b
}

// ParseTier сопоставляет строку с уровнем без учета регистра
func ParseTier(s string) (domain.Tier, bool) {
	for tier := range tierBenefits {
		if strings.EqualFold(string(tier), s) {
			return tier, true
		}
	}
	return "", false
}
