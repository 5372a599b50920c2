package driver

// feeCapMinorUnits caps the per-transaction GoCardless cut.
const feeCapMinorUnits = 200

// Fee estimates the gateway's cut of amount (minor currency units): 1%
// rounded up, capped at 200. This mirrors the published fee schedule only
// approximately; GoCardless's own billing is the source of truth.
func Fee(amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	fee := (amount + 99) / 100
	if fee > feeCapMinorUnits {
		fee = feeCapMinorUnits
	}
	return fee
}
