package types

// PaymentDetails is the gateway reference snapshot stored on a paid
// order. Field names match the gateway's verification payload so the
// stored record can be compared against webhook deliveries directly.
type PaymentDetails struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
