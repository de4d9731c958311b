// Package themes holds the built-in word theme catalog used by the
// secret-word mode. Community themes come from the room API instead.
package themes

// Theme is a built-in word list.
type Theme struct {
	Slug       string
	CategoryID string
	Name       string
	WordCount  int
	Icon       string
}

// WordCategory groups secret words by subject and difficulty.
type WordCategory struct {
	ID         string
	Name       string
	Emoji      string
	Difficulty string
	WordCount  int
}

// Builtin is the static theme catalog.
var Builtin = []Theme{
	{Slug: "classico", CategoryID: "classico", Name: "Clássico", WordCount: 20, Icon: "🎲"},
	{Slug: "natal", CategoryID: "natal", Name: "Natal", WordCount: 51, Icon: "🎄"},
	{Slug: "clash-royale", CategoryID: "estrategia", Name: "Clash Royale", WordCount: 20, Icon: "⚔️"},
	{Slug: "animes", CategoryID: "animes", Name: "Mundo dos Animes", WordCount: 20, Icon: "🎌"},
	{Slug: "super-herois", CategoryID: "herois", Name: "Universo dos Super-Heróis", WordCount: 20, Icon: "🦸"},
	{Slug: "stranger-things", CategoryID: "seriesMisterio", Name: "Stranger Things", WordCount: 30, Icon: "👾"},
	{Slug: "futebol", CategoryID: "futebol", Name: "Futebol", WordCount: 20, Icon: "⚽"},
	{Slug: "disney", CategoryID: "disney", Name: "Disney", WordCount: 30, Icon: "🏰"},
	{Slug: "valorant", CategoryID: "valorant", Name: "Valorant", WordCount: 53, Icon: "🎯"},
	{Slug: "roblox", CategoryID: "roblox", Name: "Roblox", WordCount: 34, Icon: "🧱"},
	{Slug: "supernatural", CategoryID: "supernatural", Name: "Supernatural", WordCount: 36, Icon: "😈"},
	{Slug: "dragon-ball", CategoryID: "dragonball", Name: "Dragon Ball", WordCount: 36, Icon: "🐉"},
	{Slug: "naruto", CategoryID: "naruto", Name: "Naruto", WordCount: 35, Icon: "🍥"},
	{Slug: "bandas-de-rock", CategoryID: "rock", Name: "Bandas de Rock", WordCount: 35, Icon: "🎸"},
	{Slug: "minecraft", CategoryID: "minecraft", Name: "Minecraft", WordCount: 38, Icon: "⛏️"},
	{Slug: "gta", CategoryID: "gta", Name: "Grand Theft Auto (GTA)", WordCount: 37, Icon: "🚗"},
	{Slug: "fnaf", CategoryID: "fnaf", Name: "Five Nights at Freddy's", WordCount: 30, Icon: "🐻"},
}

// Categories is the static word category catalog.
var Categories = []WordCategory{
	{ID: "animais", Name: "Animais", Emoji: "🦁", Difficulty: "fácil", WordCount: 10},
	{ID: "frutas", Name: "Frutas", Emoji: "🍎", Difficulty: "fácil", WordCount: 10},
	{ID: "objetos", Name: "Objetos", Emoji: "🔧", Difficulty: "médio", WordCount: 10},
	{ID: "profissoes", Name: "Profissões", Emoji: "👨‍⚕️", Difficulty: "médio", WordCount: 10},
	{ID: "tecnologia", Name: "Tecnologia", Emoji: "💻", Difficulty: "médio", WordCount: 10},
	{ID: "esportes", Name: "Esportes", Emoji: "⚽", Difficulty: "fácil", WordCount: 10},
	{ID: "comidas", Name: "Comidas", Emoji: "🍕", Difficulty: "fácil", WordCount: 10},
	{ID: "lugares", Name: "Lugares", Emoji: "🏖️", Difficulty: "médio", WordCount: 10},
	{ID: "veiculos", Name: "Veículos", Emoji: "🚗", Difficulty: "fácil", WordCount: 10},
	{ID: "instrumentos", Name: "Instrumentos", Emoji: "🎸", Difficulty: "médio", WordCount: 10},
}

// FindTheme returns the built-in theme with the given slug, or nil.
func FindTheme(slug string) *Theme {
	for i := range Builtin {
		if Builtin[i].Slug == slug {
			return &Builtin[i]
		}
	}
	return nil
}
