// Package badges начисляет бейджи GOLD/SILVER/BRONZE за активность в сообществе.
// models.go описывает категории активности, уровни и таблицу порогов.
package badges

// Tier описывает уровень бейджа.
type Tier string

const (
	TierGold   Tier = "GOLD"
	TierSilver Tier = "SILVER"
	TierBronze Tier = "BRONZE"
)

// Tiers перечисляет все уровни от старшего к младшему.
var Tiers = []Tier{TierGold, TierSilver, TierBronze}

// Category обозначает вид активности, за который дают бейджи.
type Category string

const (
	CategoryQuestionCount   Category = "QUESTION_COUNT"   // Сколько вопросов задал
	CategoryAnswerCount     Category = "ANSWER_COUNT"     // Сколько ответов дал
	CategoryQuestionUpvotes Category = "QUESTION_UPVOTES" // Голосов за свои вопросы
	CategoryAnswerUpvotes   Category = "ANSWER_UPVOTES"   // Голосов за свои ответы
	CategoryTotalViews      Category = "TOTAL_VIEWS"      // Просмотров своих вопросов
)

// Categories перечисляет известные категории в порядке вывода.
var Categories = []Category{
	CategoryQuestionCount,
	CategoryAnswerCount,
	CategoryQuestionUpvotes,
	CategoryAnswerUpvotes,
	CategoryTotalViews,
}

// Label возвращает человекочитаемое название категории.
func (c Category) Label() string {
	switch c {
	case CategoryQuestionCount:
		return "Questions asked"
	case CategoryAnswerCount:
		return "Answers given"
	case CategoryQuestionUpvotes:
		return "Question upvotes"
	case CategoryAnswerUpvotes:
		return "Answer upvotes"
	case CategoryTotalViews:
		return "Question views"
	default:
		return string(c)
	}
}

// Criterion хранит, сколько раз пользователь сделал действие категории.
type Criterion struct {
	Category Category
	Count    int64
}

// TierThresholds задаёт минимальное значение счётчика для каждого уровня.
// Отсутствующий уровень считается недостижимым.
type TierThresholds map[Tier]int64

// ThresholdTable хранит пороги по категориям и после загрузки не меняется.
type ThresholdTable map[Category]TierThresholds

// Tally считает заработанные бейджи каждого уровня.
type Tally struct {
	Gold   int `db:"gold"`
	Silver int `db:"silver"`
	Bronze int `db:"bronze"`
}

// Get возвращает количество бейджей уровня tier.
func (t Tally) Get(tier Tier) int {
	switch tier {
	case TierGold:
		return t.Gold
	case TierSilver:
		return t.Silver
	case TierBronze:
		return t.Bronze
	default:
		return 0
	}
}

// Total возвращает общее число бейджей.
func (t Tally) Total() int {
	return t.Gold + t.Silver + t.Bronze
}

// Gained возвращает прирост относительно prev. Уменьшение даёт 0.
func (t Tally) Gained(prev Tally) Tally {
	return Tally{
		Gold:   max(t.Gold-prev.Gold, 0),
		Silver: max(t.Silver-prev.Silver, 0),
		Bronze: max(t.Bronze-prev.Bronze, 0),
	}
}

func (t *Tally) add(tier Tier) {
	switch tier {
	case TierGold:
		t.Gold++
	case TierSilver:
		t.Silver++
	case TierBronze:
		t.Bronze++
	}
}
