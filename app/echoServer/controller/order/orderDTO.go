package order

import "github.com/mbjethwa/Seneca-Book-Store/model"

type CreateOrderReq struct {
	BookID     int64   `json:"book_id" validate:"required,gt=0"`
	OrderType  string  `json:"order_type" validate:"required,oneof=BUY RENT"`
	Quantity   int64   `json:"quantity" validate:"required,gte=1,lte=10"`
	RentalDays *int64  `json:"rental_days" validate:"omitempty,gte=1,lte=365"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateStatusReq struct {
	Status string  `json:"status" validate:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED RETURNED"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type ReturnReq struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type OrderListResp struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int64         `json:"page"`
	Size   int64         `json:"size"`
}

type AdminSummaryResp struct {
	TotalOrders    int64   `json:"total_orders"`
	TotalPurchases int64   `json:"total_purchases"`
	TotalRentals   int64   `json:"total_rentals"`
	TotalRevenue   float64 `json:"total_revenue"`
	ActiveRentals  int64   `json:"active_rentals"`
	OverdueRentals int64   `json:"overdue_rentals"`
}
