package models

import "time"

// BasketItem is a cabin hold committed to the provider's server-side basket.
// CommittedPrice always derives from a quote fetched within the commit
// window; a zero provider price is a synchronization failure, never a valid
// committed item.
type BasketItem struct {
	ItemKey         string         `bson:"item_key" json:"itemKey"`
	SessionID       string         `bson:"session_id" json:"sessionId"`
	CruiseReference string         `bson:"cruise_reference" json:"cruiseReference"`
	SelectedCabin   CabinSelection `bson:"selected_cabin" json:"selectedCabin"`
	CommittedPrice  float64        `bson:"committed_price" json:"committedPrice"`
	Currency        string         `bson:"currency" json:"currency"`
	CommittedAt     time.Time      `bson:"committed_at" json:"committedAt"`
}
