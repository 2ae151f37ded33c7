package testutil

import (
	"errors"
	"testing"
	"time"
)

func TestAsserts(t *testing.T) {
	AssertEqual(t, 8000105, 8000105)
	AssertEqual(t, "Frankfurt(Main)Hbf", "Frankfurt(Main)Hbf")
	AssertNil(t, nil)
	AssertError(t, errors.New("boom"))
	AssertContains(t, "Frankfurt(Main)Hbf", "Frankfurt")
	AssertNotContains(t, "Frankfurt(Main)Hbf", "Mannheim")
	AssertTrue(t, 2 > 1)
	AssertFalse(t, 1 == 2)
	AssertLen(t, []int{8000105, 8000244}, 2)
	AssertLen(t, []int{}, 0)

	now := time.Now()
	AssertTimeEqual(t, now, now.Add(100*time.Millisecond), 200*time.Millisecond)
}

func TestAssertDiff(t *testing.T) {
	type station struct {
		Code int
		Name string
	}
	AssertDiff(t, []station{{8000105, "Frankfurt(Main)Hbf"}}, []station{{8000105, "Frankfurt(Main)Hbf"}})
	AssertDiff(t, map[string]int{"a": 1}, map[string]int{"a": 1})
}
