package storage

import "testing"

func TestBuildItemPhotoPath(t *testing.T) {
	path, err := BuildObjectPath(PurposeItemPhoto, PathParams{
		SessionID: "01JSESSION123",
		ItemID:    "item7",
		FileName:  "front.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "photos/sessions/01JSESSION123/items/item7/front.jpg"
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
}

func TestBuildReceiptPathUsesReceiptNumber(t *testing.T) {
	path, err := BuildObjectPath(PurposeReceipt, PathParams{
		OrderID:       "order123",
		ReceiptNumber: "AKSI-KYIV-20260201-101530-001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "documents/orders/order123/receipts/AKSI-KYIV-20260201-101530-001.pdf"
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
}

func TestBuildObjectPathRejectsInvalidSegment(t *testing.T) {
	_, err := BuildObjectPath(PurposeItemPhoto, PathParams{
		SessionID: "../bad",
		ItemID:    "item",
		FileName:  "file.png",
	})
	if err == nil {
		t.Fatalf("expected error for invalid segment")
	}
}
