package cache_test

import (
	"context"
	"encoding/json"
	"time"

	"shopfloor-console/internal/infra/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type queuePayload struct {
	Machine string `json:"machine"`
	State   string `json:"state"`
	Jobs    int    `json:"jobs"`
}

var _ = ginkgo.Describe("RedisCache", func() {
	var (
		server        *miniredis.Miniredis
		cacheInstance cache.Cache
		ctx           context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		server, err = miniredis.Run()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		config := cache.DefaultRedisConfig()
		config.Addr = server.Addr()
		cacheInstance, err = cache.NewRedisCache(config)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.Context("Fetch", func() {
		ginkgo.When("reading the same key repeatedly", func() {
			ginkgo.It("should return the concrete type on every read", func() {
				calls := 0
				loader := func() (queuePayload, error) {
					calls++
					return queuePayload{Machine: "VMC-001", State: "IN_PROGRESS", Jobs: 3}, nil
				}

				key := cache.KeyOperatorQueue("VMC-001")
				first, err := cache.Fetch(ctx, cacheInstance, key, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				// The second read is a redis hit: the value comes back as
				// the stored JSON and must decode into the caller's type.
				second, err := cache.Fetch(ctx, cacheInstance, key, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				gomega.Expect(calls).To(gomega.Equal(1))
				gomega.Expect(second).To(gomega.Equal(first))
				gomega.Expect(second.Machine).To(gomega.Equal("VMC-001"))
				gomega.Expect(second.Jobs).To(gomega.Equal(3))
			})
		})

		ginkgo.When("the cached value is a raw document", func() {
			ginkgo.It("should relay it unchanged", func() {
				document := json.RawMessage(`{"utilization_pct":0.93}`)
				loader := func() (json.RawMessage, error) {
					return document, nil
				}

				_, err := cache.Fetch(ctx, cacheInstance, cache.KeyAnalyticsSummary, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				relayed, err := cache.Fetch(ctx, cacheInstance, cache.KeyAnalyticsSummary, time.Minute, func() (json.RawMessage, error) {
					return nil, nil
				})
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(relayed).To(gomega.MatchJSON(document))
			})
		})
	})

	ginkgo.Context("Delete", func() {
		ginkgo.When("a key is deleted", func() {
			ginkgo.It("should load again on the next read", func() {
				calls := 0
				loader := func() ([]string, error) {
					calls++
					return []string{"VMC-001", "VMC-002"}, nil
				}

				_, err := cache.Fetch(ctx, cacheInstance, cache.KeyMachines, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				cacheInstance.Delete(ctx, cache.KeyMachines)

				machines, err := cache.Fetch(ctx, cacheInstance, cache.KeyMachines, time.Minute, loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(calls).To(gomega.Equal(2))
				gomega.Expect(machines).To(gomega.Equal([]string{"VMC-001", "VMC-002"}))
			})
		})
	})
})
