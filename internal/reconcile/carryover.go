package reconcile

// Carryover — результат расчёта переноса бустов для одного пользователя.
// Порядок списания строгий: сначала базовый лимит тарифа, потом накопленные
// с прошлых циклов бусты, и только затем активные гранты текущего цикла.
type Carryover struct {
	TotalBoostAvailable int
	ConsumedBeyondBase  int
	ConsumedFromSaved   int
	RemainingSaved      int
	ConsumedFromActive  int
	NewlySaved          int
	NewTotalSaved       int
}

// ComputeCarryover считает перенос по чистым входным данным, без базы.
// Если активных грантов нет, накопленное переносится как есть.
func ComputeCarryover(baseLimit, monthlyUsed, savedBoosts int, activeAmounts []int) Carryover {
	c := Carryover{
		RemainingSaved: savedBoosts,
		NewTotalSaved:  savedBoosts,
	}
	if len(activeAmounts) == 0 {
		return c
	}

	for _, a := range activeAmounts {
		c.TotalBoostAvailable += a
	}

	c.ConsumedBeyondBase = max(0, monthlyUsed-baseLimit)
	c.ConsumedFromSaved = min(c.ConsumedBeyondBase, savedBoosts)
	c.RemainingSaved = savedBoosts - c.ConsumedFromSaved
	c.ConsumedFromActive = max(0, c.ConsumedBeyondBase-c.ConsumedFromSaved)
	c.NewlySaved = max(0, c.TotalBoostAvailable-c.ConsumedFromActive)
	c.NewTotalSaved = c.RemainingSaved + c.NewlySaved
	return c
}
