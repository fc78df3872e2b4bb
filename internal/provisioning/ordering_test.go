package provisioning

import (
	"context"
	"errors"
	"time"

	g "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = g.Describe("Destructive run ordering", func() {
	var h *harness

	g.BeforeEach(func() {
		h = newHarness(testConfig(), testPlan(true))
	})

	position := func(event string) int {
		i := h.trace.indexOf(event)
		Expect(i).NotTo(Equal(-1), "missing event %q in %v", event, h.trace.all())
		return i
	}

	g.Context("when every stage succeeds", func() {
		g.BeforeEach(func() {
			Expect(Run(h.ctx)).To(Succeed())
		})

		g.It("purges only after the service has stopped", func() {
			Expect(position("purge:begin " + h.ctx.Plan.DataDir)).To(BeNumerically(">", position("stop:end etcd")))
		})

		g.It("starts the peer wait only after the purge", func() {
			Expect(position("wait:begin 1m0s")).To(BeNumerically(">", position("purge:end "+h.ctx.Plan.DataDir)))
		})

		g.It("configures only after the full peer wait", func() {
			Expect(position("configure:begin")).To(BeNumerically(">", position("wait:end 1m0s")))
			Expect(h.sleeper.slept).To(Equal([]time.Duration{60 * time.Second}))
		})

		g.It("ends in Configured", func() {
			Expect(h.ctx.State()).To(Equal(StateConfigured))
		})
	})

	g.Context("when the stop fails", func() {
		g.It("never touches the data directory", func() {
			h.service.stopErr = errors.New("timed out")

			err := Run(h.ctx)

			Expect(err).To(MatchError(ContainSubstring("stop-service")))
			Expect(IsStageFailure(err)).To(BeTrue())
			Expect(h.purger.dirs).To(BeEmpty())
			Expect(h.trace.all()).NotTo(ContainElement(HavePrefix("wait:")))
		})
	})

	g.Context("when the run is cancelled during the peer wait", func() {
		g.It("waits in full and then fails instead of configuring", func() {
			cctx, cancel := context.WithCancel(context.Background())
			g.DeferCleanup(cancel)
			h.ctx.Context = cctx
			h.sleeper.onSleep = cancel

			err := Run(h.ctx)

			Expect(err).To(MatchError(context.Canceled))
			Expect(h.trace.all()).To(ContainElement("wait:end 1m0s"))
			Expect(h.trace.all()).NotTo(ContainElement("configure:begin"))
			Expect(h.ctx.State()).To(Equal(StateDataPurged))
		})
	})
})

var _ = g.Describe("Normal run", func() {
	g.It("never stops, purges or waits", func() {
		h := newHarness(testConfig(), testPlan(false))

		Expect(Run(h.ctx)).To(Succeed())

		Expect(h.trace.all()).NotTo(ContainElement(HavePrefix("stop:")))
		Expect(h.trace.all()).NotTo(ContainElement(HavePrefix("purge:")))
		Expect(h.trace.all()).NotTo(ContainElement(HavePrefix("wait:")))
		Expect(h.ctx.StateHistory()).To(Equal([]State{StateIdle, StateConfiguring, StateConfigured}))
	})
})
