package cardgate

import "time"

var addressFields = fieldTable{
	"FirstName":  "firstname",
	"Initials":   "initials",
	"LastName":   "lastname",
	"Gender":     "gender",
	"DayOfBirth": "dob",
	"Company":    "company",
	"Address":    "address",
	"City":       "city",
	"State":      "state",
	"ZipCode":    "zipcode",
	"Country":    "country_id",
}

// dayOfBirthLayouts are the input formats accepted by SetDayOfBirth.
var dayOfBirthLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

// Address holds a billing or shipping address attached to a Consumer.
type Address struct {
	entity
}

func NewAddress() *Address {
	return &Address{entity: newEntity("Address", addressFields)}
}

// SetGender stores the consumer gender, a single-character code such as
// "M" or "F".
func (a *Address) SetGender(gender string) error {
	if len(gender) != 1 {
		return newError("Address.Gender.Invalid", "invalid gender: "+gender)
	}
	return a.Set("Gender", gender)
}

// SetDayOfBirth parses dob and stores it normalized to MM/DD/YYYY, the
// format the gateway expects.
func (a *Address) SetDayOfBirth(dob string) error {
	for _, layout := range dayOfBirthLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return a.Set("DayOfBirth", t.Format("01/02/2006"))
		}
	}
	return newError("Address.DayOfBirth.Invalid", "invalid day of birth: "+dob)
}

// SetCountry stores the two-letter ISO 3166-1 country code.
func (a *Address) SetCountry(country string) error {
	if len(country) != 2 {
		return newError("Address.Country.Invalid", "invalid country code: "+country)
	}
	return a.Set("Country", country)
}

// Country returns the stored country code, or "" when unset.
func (a *Address) Country() string {
	return a.getString("Country")
}
