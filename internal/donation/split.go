package donation

import "math"

// splitAmount allocates amountCents across the platform and creator
// buckets by rounding each ratio product, then assigns the remainder to
// the prize bucket. The three buckets always sum to amountCents exactly,
// so no cent is created or lost to rounding.
func splitAmount(amountCents int64, platform, creator float64) (platformCents, creatorCents, prizeCents int64) {
	platformCents = int64(math.Round(float64(amountCents) * platform))
	creatorCents = int64(math.Round(float64(amountCents) * creator))
	prizeCents = amountCents - platformCents - creatorCents
	// With a zero prize ratio both roundings can overshoot by one cent;
	// the creator bucket absorbs it so no bucket goes negative.
	if prizeCents < 0 {
		creatorCents += prizeCents
		prizeCents = 0
	}
	return platformCents, creatorCents, prizeCents
}
