// Package trade applies parsed purchase offers against a character's gold and
// inventory.
package trade

import (
	"github.com/dkessler/fableforge/internal/game/character"
	"github.com/dkessler/fableforge/internal/game/narrative"
)

// PurchaseOutcome reports the result of resolving one purchase offer.
// Rejection is an outcome, not an error.
type PurchaseOutcome struct {
	// Accepted is true when gold was deducted and an item minted.
	Accepted bool
	// Item is the offered item name (set in both outcomes).
	Item string
	// Price is the offered price (set in both outcomes).
	Price int
	// GoldLeft is the remaining balance after an accepted purchase.
	GoldLeft int
	// GoldNeeded is the shortfall for a rejected purchase.
	GoldNeeded int
}

// Resolve applies a purchase offer to the character in place. On acceptance
// the gold is deducted and the minted item returned for the caller to
// persist; on rejection nothing is mutated.
//
// The parser passes prices through untouched, so economic validation happens
// here: a non-positive price is rejected outright.
//
// Precondition: char and offer must be non-nil.
// Postcondition: Either (accepted, non-nil item, gold reduced by price) or
// (rejected, nil item, character unchanged).
func Resolve(char *character.Character, offer *narrative.PurchaseOffer) (PurchaseOutcome, *character.Item) {
	out := PurchaseOutcome{Item: offer.Item, Price: offer.Price}

	if offer.Price <= 0 || !char.SpendGold(offer.Price) {
		out.GoldNeeded = offer.Price - char.Gold
		if out.GoldNeeded < 0 {
			out.GoldNeeded = 0
		}
		return out, nil
	}

	out.Accepted = true
	out.GoldLeft = char.Gold

	item := &character.Item{
		Name:        offer.Item,
		Category:    character.NormalizeCategory(offer.Category),
		Damage:      offer.Damage,
		ArmorBonus:  offer.ArmorBonus,
		Heal:        offer.Heal,
		Description: offer.Stats,
	}
	return out, item
}
