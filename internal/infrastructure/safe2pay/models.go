package safe2pay

// PaymentMethodPIX is Safe2Pay's code for dynamic PIX charges.
const PaymentMethodPIX = "6"

// PaymentRequest is the transaction payload sent to POST /Payment.
type PaymentRequest struct {
	IsSandbox     bool          `json:"IsSandbox"`
	Application   string        `json:"Application"`
	Vendor        string        `json:"Vendor"`
	CallbackURL   string        `json:"CallbackUrl"`
	PaymentMethod string        `json:"PaymentMethod"`
	Reference     string        `json:"Reference"`
	Customer      Customer      `json:"Customer"`
	PaymentObject PaymentObject `json:"PaymentObject"`
	Products      []Product     `json:"Products"`
}

// Customer identifies the payer.
type Customer struct {
	Name     string  `json:"Name"`
	Identity string  `json:"Identity"`
	Phone    string  `json:"Phone"`
	Email    string  `json:"Email"`
	Address  Address `json:"Address"`
}

// Address is the payer's billing address.
type Address struct {
	ZipCode       string `json:"ZipCode"`
	Street        string `json:"Street"`
	Number        string `json:"Number"`
	Complement    string `json:"Complement"`
	District      string `json:"District"`
	CityName      string `json:"CityName"`
	StateInitials string `json:"StateInitials"`
	CountryName   string `json:"CountryName"`
}

// PaymentObject holds PIX-specific settings. Expiration is in seconds.
type PaymentObject struct {
	Expiration int `json:"Expiration"`
}

// Product is one line item of the charge.
type Product struct {
	Code        string  `json:"Code"`
	Description string  `json:"Description"`
	UnitPrice   float64 `json:"UnitPrice"`
	Quantity    int     `json:"Quantity"`
}

// PaymentResponse is Safe2Pay's envelope for POST /Payment. The gateway
// signals failures through HasError rather than HTTP status codes.
type PaymentResponse struct {
	HasError       bool            `json:"HasError"`
	ErrorCode      string          `json:"ErrorCode"`
	Error          string          `json:"Error"`
	ErrorMessage   string          `json:"ErrorMessage"`
	ResponseDetail *ResponseDetail `json:"ResponseDetail"`
}

// ResponseDetail carries the created transaction and its PIX artifacts.
type ResponseDetail struct {
	IdTransaction int64  `json:"IdTransaction"`
	Key           string `json:"Key"`
	QrCode        string `json:"QrCode"`
	Identifier    string `json:"Identifier"`
}

// ErrorText returns whichever error field the gateway populated.
func (r *PaymentResponse) ErrorText() string {
	if r.Error != "" {
		return r.Error
	}
	return r.ErrorMessage
}

// StatusResponse is the envelope for GET /Payment/{id}.
type StatusResponse struct {
	HasError       bool           `json:"HasError"`
	ErrorCode      string         `json:"ErrorCode"`
	Error          string         `json:"Error"`
	ErrorMessage   string         `json:"ErrorMessage"`
	ResponseDetail map[string]any `json:"ResponseDetail"`
}

// PaymentStatus extracts the PaymentStatus field from ResponseDetail, empty
// when absent.
func (r *StatusResponse) PaymentStatus() string {
	if r.ResponseDetail == nil {
		return ""
	}
	s, _ := r.ResponseDetail["PaymentStatus"].(string)
	return s
}

// ErrorText returns whichever error field the gateway populated.
func (r *StatusResponse) ErrorText() string {
	if r.Error != "" {
		return r.Error
	}
	return r.ErrorMessage
}
