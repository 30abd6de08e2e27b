package news2

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Scorer", func() {
	var s *Scorer

	ginkgo.BeforeEach(func() {
		var err error
		s, err = New(nil)
		gomega.Expect(err).To(gomega.Succeed())
	})

	score := func(m Measurements) *Result {
		res, err := s.Calculate(context.Background(), m)
		gomega.Expect(err).To(gomega.Succeed())
		return res
	}

	ginkgo.Context("a septic patient", func() {
		ginkgo.It("lands in the High category with a crisp score to match", func() {
			res := score(Measurements{
				RespiratoryRate:  28,
				OxygenSaturation: 90,
				SystolicBP:       88,
				Pulse:            125,
				Consciousness:    Voice,
				Temperature:      39.6,
			})
			gomega.Expect(res.CrispScore).To(gomega.Equal(3 + 3 + 3 + 2 + 3 + 2))
			gomega.Expect(res.FuzzyScore).To(gomega.BeNumerically("~", float64(res.CrispScore), 2))
			gomega.Expect(res.RiskCategory).To(gomega.Equal(High))
			gomega.Expect(res.RedScore).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("a reading on a band edge", func() {
		ginkgo.It("blends the neighbouring bands instead of jumping", func() {
			below := score(Measurements{RespiratoryRate: 20, OxygenSaturation: 98, SystolicBP: 130, Pulse: 70, Consciousness: Alert, Temperature: 37})
			edge := score(Measurements{RespiratoryRate: 20.5, OxygenSaturation: 98, SystolicBP: 130, Pulse: 70, Consciousness: Alert, Temperature: 37})
			above := score(Measurements{RespiratoryRate: 21, OxygenSaturation: 98, SystolicBP: 130, Pulse: 70, Consciousness: Alert, Temperature: 37})

			gomega.Expect(above.CrispScore - below.CrispScore).To(gomega.Equal(2))
			gomega.Expect(edge.FuzzyScore).To(gomega.BeNumerically(">", below.FuzzyScore))
			gomega.Expect(edge.FuzzyScore).To(gomega.BeNumerically("<", above.FuzzyScore))
			gomega.Expect(edge.Memberships[FieldRespiratoryRate]).To(gomega.HaveKeyWithValue("normal", gomega.BeNumerically("~", 0.5, 1e-9)))
			gomega.Expect(edge.Memberships[FieldRespiratoryRate]).To(gomega.HaveKeyWithValue("high", gomega.BeNumerically("~", 0.5, 1e-9)))
		})
	})

	ginkgo.Context("a COPD patient on oxygen inside the target range", func() {
		ginkgo.It("is not penalised for saturations of 88-92%", func() {
			res := score(Measurements{
				RespiratoryRate:    18,
				OxygenSaturation:   89,
				SystolicBP:         135,
				Pulse:              80,
				Consciousness:      Alert,
				Temperature:        36.9,
				SupplementalOxygen: true,
			})
			gomega.Expect(res.OxygenScale).To(gomega.Equal(2))
			gomega.Expect(res.ParameterScores.OxygenSaturation).To(gomega.BeZero())
			gomega.Expect(res.FuzzyContributions).To(gomega.HaveKeyWithValue(FieldOxygenSaturation, gomega.BeNumerically("~", 0, 1e-9)))
			gomega.Expect(res.FuzzyScore).To(gomega.BeNumerically("~", 2, 1e-9))
		})
	})

	ginkgo.DescribeTable("consciousness levels",
		func(level Consciousness, wantRed bool) {
			m := s.Baseline(false)
			m.Consciousness = level
			res := score(m)
			gomega.Expect(res.RedScore).To(gomega.Equal(wantRed))
			gomega.Expect(res.ParameterScores.Consciousness).To(gomega.Equal(map[bool]int{true: 3, false: 0}[wantRed]))
		},
		ginkgo.Entry("alert", Alert, false),
		ginkgo.Entry("responds to voice", Voice, true),
		ginkgo.Entry("responds to pain", Pain, true),
		ginkgo.Entry("unresponsive", Unresponsive, true),
	)
})
