package lot

import "testing"

func TestValidSlotType(t *testing.T) {
	for _, ok := range []string{SlotTypeCar, SlotTypeBike, SlotTypeEV} {
		if !ValidSlotType(ok) {
			t.Fatalf("expected %q valid", ok)
		}
	}
	for _, bad := range []string{"", "truck", "CAR"} {
		if ValidSlotType(bad) {
			t.Fatalf("expected %q invalid", bad)
		}
	}
}
