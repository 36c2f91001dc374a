package config

import (
	"sort"

	"github.com/keshon/commandbot/internal/command"
)

// CategoryWeights orders categories in help output, lightest first.
// Unknown categories sort after all of these.
var CategoryWeights = map[command.Category]int{
	command.CategoryInformation: 0,
	command.CategoryUtilities:   10,
	command.CategoryFun:         20,
	command.CategoryModeration:  30,
	command.CategoryEconomy:     35,
	command.CategoryLeveling:    38,
	command.CategoryMusic:       40,
	command.CategoryTranslation: 45,
	command.CategoryMaintenance: 60,
}

func CategoryWeight(c command.Category) int {
	if w, ok := CategoryWeights[c]; ok {
		return w
	}
	return 1000
}

// SortCategories orders cats by weight, then by name.
func SortCategories(cats []command.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		wi, wj := CategoryWeight(cats[i]), CategoryWeight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})
}
