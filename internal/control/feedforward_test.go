package control

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestFeedforwardCalculate(t *testing.T) {
	g := NewWithT(t)
	ff := NewFeedforward(0.2, 2.5, 0.3)

	g.Expect(ff.Calculate(0)).To(BeZero())
	g.Expect(ff.Calculate(2.0)).To(BeNumerically("~", 0.2+5.0, 1e-12))
	g.Expect(ff.Calculate(-2.0)).To(BeNumerically("~", -0.2-5.0, 1e-12))
	g.Expect(ff.CalculateAccel(1.0, 2.0)).To(BeNumerically("~", 0.2+2.5+0.6, 1e-12))
}

func TestFeedforwardMaxVelocity(t *testing.T) {
	g := NewWithT(t)
	ff := NewFeedforward(0.2, 2.4, 0)

	g.Expect(ff.MaxVelocity(12, 0)).To(BeNumerically("~", 11.8/2.4, 1e-12))
}

func TestFeedforwardSetParam(t *testing.T) {
	g := NewWithT(t)
	ff := NewFeedforward(0, 0, 0)

	g.Expect(ff.SetParam("Kv", 3)).To(Succeed())
	g.Expect(ff.Kv).To(Equal(3.0))
	g.Expect(ff.SetParam("Kx", 1)).NotTo(Succeed())
}
