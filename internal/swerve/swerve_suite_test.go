package swerve_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwerve(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swerve Suite")
}
