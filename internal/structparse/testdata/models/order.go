package models

type (
	Order struct {
		ID     int64
		_      [4]byte
		UserID int64
	}

	OrderItem struct {
		*Order
		SKU string
	}
)
