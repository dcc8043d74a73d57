package service

import (
	"testing"

	"go-inventory-bom/internal/model"
)

func TestGetDashboardStats(t *testing.T) {
	e := newEnv(t)
	dashboard := NewDashboardService(e.orderRepo, ContextTenantResolver{})
	m1, p1 := bakery(t, e)
	e.createRawMaterial(t, "Empty", "0", e.global(t, "kg").ID)

	for i := 0; i < 2; i++ {
		if _, err := e.orders.PlaceOrder(e.ctx, &PlaceOrderRequest{
			Items:    []OrderItemRequest{{ProductID: p1.ID, Quantity: dec("1"), TotalAmount: dec("5")}},
			Payments: []OrderPaymentRequest{{Amount: dec("4"), PaymentMethod: model.PaymentCash}, {Amount: dec("1"), PaymentMethod: model.PaymentDiscount}},
		}, ""); err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
	}
	expectDecimal(t, "stock", e.stockOf(t, m1.ID), "6")

	stats, err := dashboard.GetDashboardStats(e.ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalRawMaterials != 2 || stats.OutOfStockCount != 1 {
		t.Fatalf("unexpected raw material stats %+v", stats)
	}
	if stats.TotalOrders != 2 || stats.TotalNetSales != 8 {
		t.Fatalf("unexpected order stats %+v", stats)
	}
}
