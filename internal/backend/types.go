package backend

// DTOs for the remote storefront backend. The field names are the
// collaborator's contract, not ours.

type ValidationItem struct {
	ProductID       string `json:"productId"`
	PricingID       string `json:"pricingId"`
	ProductAddonIDs string `json:"productAddonIds"`
}

type ValidationRequest struct {
	CustomerName string           `json:"customerName"`
	PhoneNumber  string           `json:"phoneNumber"`
	DomainName   string           `json:"domainName"`
	Items        []ValidationItem `json:"items"`
}

// ProductSnapshot is the server-side truth for one submitted item. Entries
// come back in the same order as the submitted items; there is no id echo.
type ProductSnapshot struct {
	ProductStatus      string   `json:"productStatus"`
	ProductPrice       float64  `json:"productPrice"`
	AddonAndAddonPrice []string `json:"addonAndAddonPrice"` // "addonId:price"
}

type ValidationResponse struct {
	ProductDetails []ProductSnapshot `json:"productDetails"`
}

type PaymentItem struct {
	ProductID       string `json:"productId"`
	PricingID       string `json:"pricingId"`
	ProductAddonIDs string `json:"productAddonIds"`
	Quantity        int    `json:"quantity"`
}

type PaymentInitRequest struct {
	DomainName        string        `json:"domainName"`
	CustomerID        string        `json:"customerId"`
	CustomerName      string        `json:"customerName"`
	PhoneNumber       string        `json:"phoneNumber"`
	Email             string        `json:"email"`
	Address           AddressDTO    `json:"address"`
	Subtotal          float64       `json:"subtotal"`
	ShippingCost      float64       `json:"shippingCost"`
	Discount          float64       `json:"discount"`
	CouponCode        string        `json:"couponCode,omitempty"`
	TotalAmount       float64       `json:"totalAmount"`
	Items             []PaymentItem `json:"items"`
	RazorpayKeyID     string        `json:"razorpayKeyId"`
	RazorpayKeySecret string        `json:"razorpayKeySecret"`
}

type PaymentInitResponse struct {
	RazorpayOrderID string `json:"razorpayOrderId"`
	RazorpayKeyID   string `json:"razorpayKeyId"`
	AmountInPaise   int64  `json:"amountInPaise"`
	Currency        string `json:"currency"`
}

type PaymentVerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type PaymentVerifyResponse struct {
	Status  string `json:"status"` // success | failed
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
}

type AddressDTO struct {
	ID         string `json:"id,omitempty"`
	Label      string `json:"label"`
	DoorNumber string `json:"doorNumber"`
	Road       string `json:"road"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
	Country    string `json:"country"`
}

type CompanyDTO struct {
	Domain                string  `json:"domainName"`
	Name                  string  `json:"companyName"`
	CouponList            string  `json:"couponList"`
	MinimumOrderAmount    float64 `json:"minimumOrderAmount"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
	DeliveryCost          float64 `json:"deliveryCost"`
	Currency              string  `json:"currency"`
	RazorpayKeyID         string  `json:"razorpayKeyId"`
	RazorpayKeySecret     string  `json:"razorpayKeySecret"`
}

type ProductDTO struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Images          []string           `json:"images"`
	Price           float64            `json:"price"`
	DiscountedPrice float64            `json:"discountedPrice"`
	ProductOffer    string             `json:"productOffer"`
	Status          string             `json:"status"`
	PricingOptions  []PricingOptionDTO `json:"pricingOptions"`
	Addons          []AddonDTO         `json:"addons"`
	Colours         []ColourDTO        `json:"colours"`
}

type PricingOptionDTO struct {
	ID              string          `json:"id"`
	QuantityLabel   string          `json:"quantityLabel"`
	Price           float64         `json:"price"`
	DiscountedPrice float64         `json:"discountedPrice"`
	Status          string          `json:"status"`
	SizeColours     []SizeColourDTO `json:"sizeColours"`
}

type SizeColourDTO struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

type AddonDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ColourDTO struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}
