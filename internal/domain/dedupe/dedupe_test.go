package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/rostrumhq/rostrum/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a new submission ID", func() {
			seen := d.SeenAndRecord(ctx, "sub-1")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports a duplicate", func() {
				So(d.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording a submission ID", func() {
			d.SeenAndRecord(ctx, "sub-1")
			d.Unrecord(ctx, "sub-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown ID", func() {
			d.Unrecord(ctx, "never-seen")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to three entries", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording four IDs", func() {
			for i := 1; i <= 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i)), ShouldBeFalse)
			}

			Convey("Then the oldest was evicted and the rest retained", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "sub-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "sub-3"), ShouldBeTrue)
				// sub-1 fell out of the window and counts as new again.
				So(d.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			})
		})

		Convey("When an entry is unrecorded before the cache fills", func() {
			d.SeenAndRecord(ctx, "sub-1")
			d.SeenAndRecord(ctx, "sub-2")
			d.Unrecord(ctx, "sub-1")
			d.SeenAndRecord(ctx, "sub-3")
			d.SeenAndRecord(ctx, "sub-4")

			Convey("Then eviction skips the dead slot", func() {
				So(d.Size(), ShouldEqual, 3)
				// Adding one more should evict sub-2, the oldest live entry.
				d.SeenAndRecord(ctx, "sub-5")
				So(d.SeenAndRecord(ctx, "sub-2"), ShouldBeFalse)
			})
		})
	})
}

func TestUnboundedMode(t *testing.T) {
	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When recording many IDs", func() {
			for i := 0; i < 10_000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 10_000)
				So(d.SeenAndRecord(ctx, "sub-0"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent recorders sharing one deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100_000))

		Convey("When goroutines race on overlapping IDs", func() {
			const goroutines = 8
			const ids = 500
			newCounts := make([]int, goroutines)

			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < ids; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i)) {
							newCounts[g]++
						}
					}
				}(g)
			}
			wg.Wait()

			Convey("Then each ID is recorded as new exactly once", func() {
				total := 0
				for _, c := range newCounts {
					total += c
				}
				So(total, ShouldEqual, ids)
				So(d.Size(), ShouldEqual, ids)
			})
		})
	})
}
