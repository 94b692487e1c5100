package deck

import (
	"fmt"
	"strings"
)

// majorNames lists the Major Arcana in trump order (0-21) with English and
// Chinese names.
var majorNames = []struct {
	en string
	cn string
}{
	{"The Fool", "愚人"},
	{"The Magician", "魔术师"},
	{"The High Priestess", "女祭司"},
	{"The Empress", "皇后"},
	{"The Emperor", "皇帝"},
	{"The Hierophant", "教皇"},
	{"The Lovers", "恋人"},
	{"The Chariot", "战车"},
	{"Strength", "力量"},
	{"The Hermit", "隐士"},
	{"Wheel of Fortune", "命运之轮"},
	{"Justice", "正义"},
	{"The Hanged Man", "倒吊人"},
	{"Death", "死神"},
	{"Temperance", "节制"},
	{"The Devil", "恶魔"},
	{"The Tower", "高塔"},
	{"The Star", "星星"},
	{"The Moon", "月亮"},
	{"The Sun", "太阳"},
	{"Judgement", "审判"},
	{"The World", "世界"},
}

var suitNamesCN = map[Suit]string{
	Wands:     "权杖",
	Cups:      "圣杯",
	Swords:    "宝剑",
	Pentacles: "星币",
}

// rankName returns the English and Chinese names for a minor arcana rank.
func rankName(n int) (en, cn string) {
	switch n {
	case 1:
		return "Ace", "首牌"
	case 11:
		return "Page", "侍从"
	case 12:
		return "Knight", "骑士"
	case 13:
		return "Queen", "王后"
	case 14:
		return "King", "国王"
	default:
		return fmt.Sprintf("%d", n), fmt.Sprintf("%d", n)
	}
}

// imageURL maps a card to its Rider-Waite-Smith scan on Wikimedia Commons.
// Trump filenames carry the trump number and the name without the leading
// "The"; pips are RWS_Tarot_<Suit>_<rank>.jpg with a zero-padded rank.
func imageURL(arcana Arcana, suit Suit, number int, name string) string {
	const base = "https://upload.wikimedia.org/wikipedia/commons/d/de/"
	if arcana == Major {
		short := strings.ReplaceAll(strings.TrimPrefix(name, "The "), " ", "_")
		return fmt.Sprintf("%sRWS_Tarot_%02d_%s.jpg", base, number, short)
	}
	return fmt.Sprintf("%sRWS_Tarot_%s_%02d.jpg", base, suit, number)
}

// generate builds the full catalog: 22 trumps followed by 14 ranks in each
// of the four suits, ids assigned sequentially from 0.
func generate() []Card {
	cards := make([]Card, 0, Size)
	id := 0

	for number, m := range majorNames {
		cards = append(cards, Card{
			ID:        id,
			Name:      m.en,
			LocalName: m.cn,
			Arcana:    Major,
			Suit:      SuitNone,
			Number:    number,
			ImageURL:  imageURL(Major, SuitNone, number, m.en),
			Keywords:  []string{"Major Arcana", "Archetype"},
		})
		id++
	}

	for _, suit := range []Suit{Wands, Cups, Swords, Pentacles} {
		for n := 1; n <= 14; n++ {
			rankEN, rankCN := rankName(n)
			cards = append(cards, Card{
				ID:        id,
				Name:      fmt.Sprintf("%s of %s", rankEN, suit),
				LocalName: fmt.Sprintf("%s %s", suitNamesCN[suit], rankCN),
				Arcana:    Minor,
				Suit:      suit,
				Number:    n,
				ImageURL:  imageURL(Minor, suit, n, ""),
				Keywords:  []string{string(suit), "Minor Arcana"},
			})
			id++
		}
	}

	return cards
}
