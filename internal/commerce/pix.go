package commerce

// PixPayment is the charge the backend generates on demand for an order.
// It is never cached beyond the current view of the order.
type PixPayment struct {
	QRCodeImageBase64 string `json:"qr_code_image_base64"`
	CopyPasteCode     string `json:"copy_paste_code"`
}
