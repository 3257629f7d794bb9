// Package badges: aggregator.go считает бейджи по счётчикам активности.
package badges

// ComputeTally считает, сколько бейджей каждого уровня заработано.
//
// Каждый критерий проверяется отдельно (повторы категорий не сливаются),
// и каждый уровень тоже проверяется независимо. Счётчик 100 при порогах
// 10/50/100 даёт сразу GOLD, SILVER и BRONZE.
//
// Категория, которой нет в таблице, и отрицательный счётчик не дают ничего.
// Функция чистая: результат не зависит от порядка criteria.
func ComputeTally(criteria []Criterion, thresholds ThresholdTable) Tally {
	var tally Tally

	for _, c := range criteria {
		levels, ok := thresholds[c.Category]
		if !ok || c.Count < 0 {
			continue
		}

		for _, tier := range Tiers {
			if need, ok := levels[tier]; ok && c.Count >= need {
				tally.add(tier)
			}
		}
	}

	return tally
}

// NextTier возвращает ближайший ещё не достигнутый уровень категории и его порог.
// ok == false, если взяты все уровни или категории нет в таблице.
func NextTier(c Criterion, thresholds ThresholdTable) (tier Tier, threshold int64, ok bool) {
	levels, found := thresholds[c.Category]
	if !found {
		return "", 0, false
	}

	for _, t := range Tiers {
		need, has := levels[t]
		if !has || c.Count >= need {
			continue
		}
		if !ok || need < threshold {
			tier, threshold, ok = t, need, true
		}
	}
	return tier, threshold, ok
}
