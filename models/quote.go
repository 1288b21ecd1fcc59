package models

import "time"

// CabinGradeQuote is a live price for one cabin grade, valid only for the
// cruise and passenger composition it was fetched against. A quote older
// than the pricing cache TTL must never back a basket commit.
type CabinGradeQuote struct {
	GradeID        string    `bson:"grade_id" json:"gradeId"`
	RateCode       string    `bson:"rate_code" json:"rateCode"`
	CabinType      string    `bson:"cabin_type" json:"cabinType"`
	TotalPrice     float64   `bson:"total_price" json:"totalPrice"`
	PerPersonPrice float64   `bson:"per_person_price" json:"perPersonPrice"`
	Currency       string    `bson:"currency" json:"currency"`
	FetchedAt      time.Time `bson:"fetched_at" json:"fetchedAt"`
}

// CruiseSummary is the catalog view of a sailing, maintained by the
// ingestion pipeline and read-only here.
type CruiseSummary struct {
	CruiseReference string    `bson:"cruise_reference" json:"cruiseReference"`
	Name            string    `bson:"name" json:"name"`
	ShipName        string    `bson:"ship_name" json:"shipName"`
	CruiseLine      string    `bson:"cruise_line" json:"cruiseLine"`
	Nights          int       `bson:"nights" json:"nights"`
	SailDate        time.Time `bson:"sail_date" json:"sailDate"`
	EmbarkPort      string    `bson:"embark_port" json:"embarkPort"`
}
