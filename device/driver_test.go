package device

import (
	"sort"
	"testing"
)

func TestDriverInfoListSorting(t *testing.T) {
	origList := DriverInfoList{
		{Order: DetectOrderInput},
		{Order: DetectOrderLast},
		{Order: DetectOrderTTY},
		{Order: DetectOrderEarly},
		{Order: DetectOrderConsole},
		{Order: DetectOrderInput},
	}

	list := make(DriverInfoList, len(origList))
	copy(list, origList)
	sort.Stable(list)

	expOrder := []int{3, 4, 2, 0, 5, 1}
	for i, exp := range expOrder {
		if list[i] != origList[exp] {
			t.Errorf("expected sorted entry %d to be original entry %d", i, exp)
		}
	}
}
