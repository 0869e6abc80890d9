package palette

import (
	"fmt"

	"github.com/1broseidon/cardwm/internal/ipc"
)

// CardItems lists the cards of every group in strip order, each group under
// a header row. The active card of the active group is marked active.
func CardItems(data *ipc.GroupsData) []Item {
	type info struct{ name, app string }
	cards := make(map[string]info, len(data.Cards))
	for _, c := range data.Cards {
		if c.Removed {
			continue
		}
		cards[c.ID] = info{name: c.Name, app: c.AppID}
	}

	var items []Item
	for i, g := range data.Groups {
		items = append(items, Item{Label: fmt.Sprintf("Group %d", i+1), IsHeader: true})
		for _, id := range g.Cards {
			c, ok := cards[id]
			if !ok {
				continue
			}
			label := c.name
			if label == "" {
				label = id
			}
			if c.app != "" {
				label = fmt.Sprintf("%s  [%s]", label, c.app)
			}
			items = append(items, Item{
				Label:    label,
				Card:     id,
				Icon:     c.app,
				IsActive: g.Active && id == g.ActiveCard,
			})
		}
	}
	return items
}
