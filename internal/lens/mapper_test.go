package lens_test

import (
	"context"
	"errors"
	"math"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
)

var _ = Describe("Mapper", func() {
	var (
		ctx    context.Context
		mapper *lens.Mapper
	)

	BeforeEach(func() {
		ctx = context.Background()
		mapper = lens.NewMapper()
	})

	Describe("validation", func() {
		DescribeTable("rejects invalid parameters before computing",
			func(p lens.Params, field string) {
				res, err := mapper.Map(ctx, p)
				Expect(res).To(BeNil())
				Expect(errors.Is(err, lens.ErrParameterBounds)).To(BeTrue())

				var verr *lens.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Field).To(Equal(field))
			},
			Entry("zero grid", lens.Params{GridSize: 0, EinsteinRadius: 50, SourceRadius: 20}, "grid_size"),
			Entry("negative grid", lens.Params{GridSize: -4, EinsteinRadius: 50, SourceRadius: 20}, "grid_size"),
			Entry("oversized grid", lens.Params{GridSize: lens.MaxGridSize + 1, EinsteinRadius: 50, SourceRadius: 20}, "grid_size"),
			Entry("zero einstein radius", lens.Params{GridSize: 100, EinsteinRadius: 0, SourceRadius: 20}, "einstein_radius"),
			Entry("negative source radius", lens.Params{GridSize: 100, EinsteinRadius: 50, SourceRadius: -1}, "source_radius"),
			Entry("NaN source position", lens.Params{GridSize: 100, EinsteinRadius: 50, SourceX: math.NaN(), SourceRadius: 20}, "source_x"),
			Entry("infinite source position", lens.Params{GridSize: 100, EinsteinRadius: 50, SourceY: math.Inf(1), SourceRadius: 20}, "source_y"),
		)

		It("reports a canceled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := mapper.Map(cctx, lens.DefaultParams())
			Expect(errors.Is(err, lens.ErrCanceled)).To(BeTrue())
		})
	})

	Describe("output shape", func() {
		It("returns N×N source and lensed fields", func() {
			res, err := mapper.Map(ctx, lens.Params{GridSize: 101, EinsteinRadius: 20, SourceX: 5, SourceRadius: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Source.N()).To(Equal(101))
			Expect(res.Lensed.N()).To(Equal(101))
			Expect(res.Sampler).To(Equal("nearest"))
		})

		It("peaks the source field at the source center", func() {
			res, err := mapper.Map(ctx, lens.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			// (50, 0) sits at row 100, col 150 on a 200 grid.
			Expect(res.Source.At(100, 150)).To(Equal(1.0))
			Expect(res.Source.Max()).To(Equal(1.0))
		})
	})

	Describe("vanishing Einstein radius", func() {
		DescribeTable("reproduces the source field",
			func(n int) {
				p := lens.Params{GridSize: n, EinsteinRadius: 1e-6, SourceX: 10, SourceY: -7, SourceRadius: 15}
				res, err := mapper.Map(ctx, p)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Lensed.Equal(res.Source)).To(BeTrue())
			},
			Entry("even grid", 120),
			Entry("odd grid", 121),
		)
	})

	Describe("symmetry", func() {
		It("is symmetric under 180° rotation for a centered source", func() {
			n := 200
			res, err := mapper.Map(ctx, lens.Params{GridSize: n, EinsteinRadius: 50, SourceRadius: 20})
			Expect(err).NotTo(HaveOccurred())

			// Index i has coordinate i-N/2, so its mirror is N-i; index 0 has no mirror.
			for r := 1; r < n; r++ {
				for c := 1; c < n; c++ {
					Expect(res.Lensed.At(r, c)).To(BeNumerically("~", res.Lensed.At(n-r, n-c), 1e-12))
				}
			}
		})
	})

	Describe("reproducibility", func() {
		It("returns bit-identical output on repeated calls", func() {
			p := lens.DefaultParams()
			a, err := mapper.Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			b, err := mapper.Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Lensed.Equal(b.Lensed)).To(BeTrue())
			Expect(a.Source.Equal(b.Source)).To(BeTrue())
			Expect(a.Lensed).NotTo(BeIdenticalTo(b.Lensed))
		})

		It("does not depend on the worker count", func() {
			p := lens.Params{GridSize: 260, EinsteinRadius: 70, SourceX: -30, SourceY: 45, SourceRadius: 12}
			serial, err := mapper.Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			parallel, err := lens.NewMapper(lens.WithWorkers(8)).Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			Expect(parallel.Lensed.Equal(serial.Lensed)).To(BeTrue())
		})

		It("uses GOMAXPROCS for zero workers and runs negative counts serially", func() {
			Expect(lens.NewMapper(lens.WithWorkers(0)).Workers()).To(Equal(runtime.GOMAXPROCS(0)))

			p := lens.DefaultParams()
			serial, err := lens.NewMapper().Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			negative, err := lens.NewMapper(lens.WithWorkers(-4)).Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(negative.Lensed.Equal(serial.Lensed)).To(BeTrue())
		})

		It("leaves the params untouched", func() {
			p := lens.DefaultParams()
			res, err := mapper.Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Params).To(Equal(lens.DefaultParams()))
		})
	})

	Describe("far source", func() {
		It("produces an empty lensed field", func() {
			n := 200
			res, err := mapper.Map(ctx, lens.Params{GridSize: n, EinsteinRadius: 50, SourceX: float64(n), SourceY: float64(n), SourceRadius: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Lensed.Max()).To(BeNumerically("<", 1e-12))
		})
	})

	Describe("image splitting", func() {
		It("shows two images straddling the lens along the source axis", func() {
			res, err := mapper.Map(ctx, lens.Params{GridSize: 200, EinsteinRadius: 50, SourceX: 50, SourceY: 0, SourceRadius: 20})
			Expect(err).NotTo(HaveOccurred())

			mean := res.Lensed.Mean()
			profile := metrics.Profile(res.Lensed, res.Grid, 1, 0)
			peaks := metrics.FindPeaks(profile.Values, mean)
			Expect(len(peaks)).To(BeNumerically(">=", 2))

			var left, right bool
			for _, i := range peaks {
				Expect(profile.Values[i]).To(BeNumerically(">", mean))
				if profile.Positions[i] < 0 {
					left = true
				} else {
					right = true
				}
			}
			Expect(left).To(BeTrue())
			Expect(right).To(BeTrue())
		})
	})

	Describe("bilinear sampling", func() {
		It("carries no flux for rays leaving the source plane", func() {
			m := lens.NewMapper(lens.WithSampler(lens.Bilinear{}))
			res, err := m.Map(ctx, lens.Params{GridSize: 100, EinsteinRadius: 30, SourceRadius: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sampler).To(Equal("bilinear"))
			// The center ray is deflected by zero, every neighbour far off-grid.
			Expect(res.Lensed.At(50, 51)).To(Equal(0.0))
		})

		It("agrees with nearest sampling on the identity mapping", func() {
			p := lens.Params{GridSize: 100, EinsteinRadius: 1e-6, SourceX: 3, SourceRadius: 10}
			res, err := lens.NewMapper(lens.WithSampler(lens.Bilinear{})).Map(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Lensed.EqualApprox(res.Source, 1e-9)).To(BeTrue())
		})
	})
})
