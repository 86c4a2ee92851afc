// Package reward rolls beast loot tables for victorious heroes: currency
// credits straight to the balance, items respect inventory capacity and
// overflow is reported back so the battle footer can show what was left
// behind.
package reward

import (
	"math/rand"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/model"
)

// lootRoll draws the drop roll in [0,1).
// Tests that override this must NOT use t.Parallel().
var lootRoll = func() float64 { return rand.Float64() }

// Grant is one loot line of a battle footer.
type Grant struct {
	Key      string `json:"key"`
	Amount   int    `json:"amount"`
	Currency bool   `json:"currency,omitempty"`
}

// Award rolls every drop of a loot table for one hero. Returns what was
// obtained and what was skipped for lack of inventory space. The hero's
// balance and inventory are mutated in place; persisting them is the
// caller's concern.
func Award(h *model.Hero, drops []data.LootDrop) (obtained, skipped []Grant) {
	for _, d := range drops {
		if lootRoll() > d.Chance {
			continue
		}
		amount := max(1, d.Amount)

		if d.Kind == data.LootCurrency {
			h.SpiritStones += int64(amount)
			obtained = append(obtained, Grant{Key: d.Key, Amount: amount, Currency: true})
			continue
		}

		added := addItems(h, d.Key, amount)
		if added > 0 {
			obtained = append(obtained, Grant{Key: d.Key, Amount: added})
		}
		if added < amount {
			skipped = append(skipped, Grant{Key: d.Key, Amount: amount - added})
		}
	}
	return obtained, skipped
}

// addItems grants up to amount of one item, bounded by free capacity.
func addItems(h *model.Hero, key string, amount int) int {
	free := h.Capacity - h.InventoryLoad()
	if free <= 0 {
		return 0
	}
	if amount > free {
		amount = free
	}
	if h.Inventory == nil {
		h.Inventory = make(map[string]int)
	}
	h.Inventory[key] += amount
	return amount
}
