package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"shopfloor-console/internal/infra/cache"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Cache", func() {
	var (
		cacheInstance cache.Cache
		ctx           context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		cacheInstance, err = cache.New(nil)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ctx = context.Background()
	})

	ginkgo.Context("GetSet", func() {
		ginkgo.When("setting and getting a value", func() {
			ginkgo.It("should store and retrieve the value correctly", func() {
				success := cacheInstance.Set(ctx, cache.KeyMachines, "machines-payload", 0)
				gomega.Expect(success).To(gomega.BeTrue())

				// Small delay for Ristretto to process the value
				time.Sleep(10 * time.Millisecond)

				retrieved, found := cacheInstance.Get(ctx, cache.KeyMachines)
				gomega.Expect(found).To(gomega.BeTrue())
				gomega.Expect(retrieved).To(gomega.Equal("machines-payload"))
			})
		})
	})

	ginkgo.Context("StaleTime", func() {
		ginkgo.When("setting a value with a short stale-time", func() {
			ginkgo.It("should expire the value after the TTL", func() {
				ttl := 100 * time.Millisecond
				success := cacheInstance.Set(ctx, cache.KeySchedule, "schedule-payload", ttl)
				gomega.Expect(success).To(gomega.BeTrue())

				time.Sleep(10 * time.Millisecond)

				retrieved, found := cacheInstance.Get(ctx, cache.KeySchedule)
				gomega.Expect(found).To(gomega.BeTrue())
				gomega.Expect(retrieved).To(gomega.Equal("schedule-payload"))

				time.Sleep(ttl + 50*time.Millisecond)

				retrieved, found = cacheInstance.Get(ctx, cache.KeySchedule)
				gomega.Expect(found).To(gomega.BeFalse())
				gomega.Expect(retrieved).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Context("GetOrSet", func() {
		ginkgo.When("the key is missing", func() {
			ginkgo.It("should invoke the loader and cache the result", func() {
				var calls int32
				loader := func() (any, error) {
					atomic.AddInt32(&calls, 1)
					return []string{"VMC-001", "HMC-A"}, nil
				}

				value, err := cacheInstance.GetOrSet(ctx, cache.KeyMachines, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(value).To(gomega.Equal([]string{"VMC-001", "HMC-A"}))

				time.Sleep(10 * time.Millisecond)

				value, err = cacheInstance.GetOrSet(ctx, cache.KeyMachines, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(value).To(gomega.Equal([]string{"VMC-001", "HMC-A"}))
				gomega.Expect(atomic.LoadInt32(&calls)).To(gomega.Equal(int32(1)))
			})
		})

		ginkgo.When("the loader fails", func() {
			ginkgo.It("should propagate the error and cache nothing", func() {
				loadErr := errors.New("upstream unreachable")
				_, err := cacheInstance.GetOrSet(ctx, cache.KeyOrders, time.Minute, func() (any, error) {
					return nil, loadErr
				})
				gomega.Expect(err).To(gomega.MatchError(loadErr))

				_, found := cacheInstance.Get(ctx, cache.KeyOrders)
				gomega.Expect(found).To(gomega.BeFalse())
			})
		})

		ginkgo.When("many readers race on an invalidated key", func() {
			ginkgo.It("should share a single in-flight load", func() {
				var calls int32
				release := make(chan struct{})
				loader := func() (any, error) {
					atomic.AddInt32(&calls, 1)
					<-release
					return "queue-snapshot", nil
				}

				key := cache.KeyOperatorQueue("VMC-001")
				cacheInstance.Delete(ctx, key)
				cacheInstance.Delete(ctx, key) // double invalidation is idempotent

				var wg sync.WaitGroup
				results := make([]any, 8)
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func(slot int) {
						defer wg.Done()
						value, err := cacheInstance.GetOrSet(ctx, key, time.Minute, loader)
						gomega.Expect(err).NotTo(gomega.HaveOccurred())
						results[slot] = value
					}(i)
				}

				// Give every goroutine time to join the same flight.
				time.Sleep(50 * time.Millisecond)
				close(release)
				wg.Wait()

				gomega.Expect(atomic.LoadInt32(&calls)).To(gomega.Equal(int32(1)))
				for _, value := range results {
					gomega.Expect(value).To(gomega.Equal("queue-snapshot"))
				}
			})
		})
	})

	ginkgo.Context("Delete", func() {
		ginkgo.When("a mutation invalidates a key", func() {
			ginkgo.It("should remove the value so the next read reloads", func() {
				cacheInstance.Set(ctx, cache.KeyDowntimes, "stale", 0)
				time.Sleep(10 * time.Millisecond)

				cacheInstance.Delete(ctx, cache.KeyDowntimes)

				_, found := cacheInstance.Get(ctx, cache.KeyDowntimes)
				gomega.Expect(found).To(gomega.BeFalse())
			})
		})
	})
})
