package types

// Location is the street address of a vendor.
type Location struct {
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Street     string `bson:"street" json:"street"`
	Zone       string `bson:"zone" json:"zone"`
	Avenue     string `bson:"avenue" json:"avenue"`
}

// OpeningHours holds free-form schedules such as "08:00-18:00".
type OpeningHours struct {
	Weekdays string `bson:"weekdays" json:"weekdays"`
	Weekends string `bson:"weekends" json:"weekends"`
	Holidays string `bson:"holidays" json:"holidays"`
}
