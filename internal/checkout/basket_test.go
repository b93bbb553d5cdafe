package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

func testProduct() Product {
	return Product{
		ID:       "p1",
		SKU:      "APPLE",
		Name:     "Apples",
		Unit:     enums.UnitKilogram,
		Price:    dec("4"),
		Category: "produce",
	}
}

func TestUpsertAggregatesBySKU(t *testing.T) {
	t.Parallel()

	b := &Basket{}
	if !b.Upsert(testProduct(), dec("1.5")) {
		t.Fatal("first upsert rejected")
	}
	if !b.Upsert(testProduct(), dec("2")) {
		t.Fatal("second upsert rejected")
	}

	if len(b.Items) != 1 {
		t.Fatalf("expected one aggregated line, got %d", len(b.Items))
	}
	if !b.Items[0].Qty.Equal(dec("3.5")) {
		t.Fatalf("qty = %s, want 3.5", b.Items[0].Qty)
	}
}

func TestUpsertRejectsNonPositiveQty(t *testing.T) {
	t.Parallel()

	b := &Basket{}
	if b.Upsert(testProduct(), decimal.Zero) {
		t.Fatal("zero qty accepted")
	}
	if b.Upsert(testProduct(), dec("-1")) {
		t.Fatal("negative qty accepted")
	}
	if len(b.Items) != 0 {
		t.Fatalf("basket mutated: %d items", len(b.Items))
	}
}

func TestUpsertCapturesPriceAtAddTime(t *testing.T) {
	t.Parallel()

	b := &Basket{}
	p := testProduct()
	b.Upsert(p, dec("1"))

	// a later catalog price change must not touch the captured line
	p.Price = dec("9")
	b.Upsert(p, dec("1"))

	if !b.Items[0].Price.Equal(dec("4")) {
		t.Fatalf("price = %s, want the add-time 4", b.Items[0].Price)
	}
}

func TestUpsertBarcodeFallback(t *testing.T) {
	t.Parallel()

	b := &Basket{}
	b.Upsert(testProduct(), dec("1"))
	if b.Items[0].Barcode != "p1" {
		t.Fatalf("barcode = %q, want product id fallback", b.Items[0].Barcode)
	}

	code := "4001"
	p := testProduct()
	p.SKU = "MILK"
	p.Barcode = &code
	b.Upsert(p, dec("1"))
	if b.Items[1].Barcode != "4001" {
		t.Fatalf("barcode = %q, want 4001", b.Items[1].Barcode)
	}
}

func TestRemoveOperations(t *testing.T) {
	t.Parallel()

	b := &Basket{}
	first := testProduct()
	second := testProduct()
	second.ID, second.SKU = "p2", "MILK"
	b.Upsert(first, dec("1"))
	b.Upsert(second, dec("1"))

	if !b.RemoveByID("p1") {
		t.Fatal("remove existing item failed")
	}
	if b.RemoveByID("missing") {
		t.Fatal("remove of unknown id reported success")
	}
	if len(b.Items) != 1 || b.Items[0].ID != "p2" {
		t.Fatalf("unexpected items after remove: %+v", b.Items)
	}

	if !b.RemoveLast() {
		t.Fatal("remove last failed")
	}
	if b.RemoveLast() {
		t.Fatal("remove last on empty basket reported success")
	}
	if !b.IsEmpty() {
		t.Fatal("basket not empty")
	}

	b.Upsert(first, dec("1"))
	b.Clear()
	if !b.IsEmpty() {
		t.Fatal("clear left items behind")
	}
}

func TestLineItemCloneDetachesPointers(t *testing.T) {
	t.Parallel()

	item := LineItem{ID: "i1", SKU: "A", Qty: dec("1"), Price: dec("2"), SellPrice: decPtr("1.8"), DiscountValue: decPtr("0.2")}
	clone := item.Clone()

	*clone.SellPrice = dec("99")
	if !item.SellPrice.Equal(dec("1.8")) {
		t.Fatal("clone shares sell price pointer with original")
	}
}
