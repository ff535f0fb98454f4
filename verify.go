package cachebench

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/sirupsen/logrus"
)

// LogVerification compares the measured properties against what the CPU
// itself reports through CPUID. The comparison is diagnostic only and runs
// after the inference has finished; measurement never consults it.
func LogVerification(log *logrus.Logger, props Properties) {
	cpu := cpuid.CPU
	log.Infof("verification against CPUID (%s)", cpu.BrandName)
	logComparison(log, "cache line size", props.CacheLineSize, int64(cpu.CacheLine))
	logComparison(log, "L1D cache size", props.CacheSize, int64(cpu.Cache.L1D))
}

func logComparison(log *logrus.Logger, what string, measured uint64, reported int64) {
	if reported <= 0 {
		log.Infof("%s: measured %d, CPUID does not report a value",
			what, measured)
		return
	}
	match := "MISMATCH"
	if measured == uint64(reported) {
		match = "match"
	}
	log.Infof("%s: measured %d, CPUID reports %d (%s)",
		what, measured, reported, match)
}
