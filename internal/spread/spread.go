// Package spread defines the static catalog of spread layouts. A spread is
// an ordered set of named positions; its length decides how many cards a
// reading draws.
package spread

// Position is one slot in a spread. Index is the 0-based ordinal; drawn
// card i always corresponds to position i.
type Position struct {
	Index       int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config describes one spread layout.
type Config struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Positions   []Position `json:"positions"`
}

// Size returns the number of cards this spread requires.
func (c Config) Size() int { return len(c.Positions) }

// catalog is the fixed set of spreads, in display order.
var catalog = []Config{
	{
		ID:          "daily",
		Name:        "每日一牌 (Daily Draw)",
		Description: "抽取一张牌，指引当下的能量或运势。",
		Positions: []Position{
			{Index: 0, Name: "核心指引", Description: "今日的关键信息或能量。"},
		},
	},
	{
		ID:          "timeflow",
		Name:        "时间流 (Time Flow)",
		Description: "三张牌解读过去、现在与未来。",
		Positions: []Position{
			{Index: 0, Name: "过去", Description: "影响当前状况的过去事件。"},
			{Index: 1, Name: "现在", Description: "目前的处境或挑战。"},
			{Index: 2, Name: "未来", Description: "事情发展的趋势或结果。"},
		},
	},
	{
		ID:          "celtic",
		Name:        "凯尔特十字 (Celtic Cross)",
		Description: "经典的深入分析牌阵，揭示问题的全貌。",
		Positions: []Position{
			{Index: 0, Name: "核心", Description: "现在的状况。"},
			{Index: 1, Name: "阻碍/助力", Description: "交叉的影响。"},
			{Index: 2, Name: "根源", Description: "潜意识或过去的成因。"},
			{Index: 3, Name: "过去", Description: "刚刚发生的事件。"},
			{Index: 4, Name: "目标", Description: "意识到的目标或理想。"},
			{Index: 5, Name: "未来", Description: "即将发生的。"},
			{Index: 6, Name: "态度", Description: "当事人的态度。"},
			{Index: 7, Name: "环境", Description: "周围环境或他人的看法。"},
			{Index: 8, Name: "希望/恐惧", Description: "内心的希望或恐惧。"},
			{Index: 9, Name: "结果", Description: "最终的综合结果。"},
		},
	},
}

// Catalog returns a copy of the spread catalog in display order.
func Catalog() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a spread by its id. The second return is false when the id
// is unknown (e.g. a history item persisted by an older build).
func ByID(id string) (Config, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// Default returns the spread pre-selected at startup.
func Default() Config { return catalog[0] }
