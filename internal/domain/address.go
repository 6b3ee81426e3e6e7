package domain

// Address is a customer delivery address, owned by the backend; the client
// holds a cached copy per session.
type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label"` // Home, Work, Other or a custom name
	DoorNumber string `json:"door_number"`
	Road       string `json:"road"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
	Country    string `json:"country"`
}

// Contact is the customer contact info required before payment.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
