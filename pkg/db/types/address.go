package types

// Address is the shipping destination snapshot frozen onto an order.
type Address struct {
	FullName   string   `json:"full_name"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

func (a *Address) IsComplete() bool {
	if a == nil {
		return false
	}
	return a.FullName != "" && a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}
