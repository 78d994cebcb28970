// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cpuinfo reports the widest non-temporal vector family the
// running CPU supports, for the test-info preamble. The access package
// selects its primitives by build target and does not consult this
// package, so the reported level is what was detected, not necessarily
// what the primitives used.
package cpuinfo

import (
	"os"
	"strconv"
)

// Level identifies a family of non-temporal load/store instructions.
type Level int

const (
	// LevelScalar means no vector non-temporal instructions were detected,
	// or TIERMARK_NO_SIMD is set.
	LevelScalar Level = iota

	// LevelAVX2 indicates 256-bit non-temporal loads/stores (vmovntdqa/vmovntdq, ymm).
	LevelAVX2

	// LevelAVX512 indicates 512-bit non-temporal loads/stores (zmm).
	LevelAVX512

	// LevelNEON indicates 128-bit ARM NEON non-temporal-equivalent loads/stores (LDNP/STNP).
	LevelNEON
)

// String returns a human-readable name, used verbatim in the test-info preamble.
func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel and currentWidth are set by init() in dispatch_*.go files.
var (
	currentLevel Level
	currentWidth int
)

// CurrentLevel returns the detected non-temporal access tier for this host.
func CurrentLevel() Level { return currentLevel }

// CurrentWidth returns the native vector width in bytes for the current level.
func CurrentWidth() int { return currentWidth }

// HasVectorNT reports whether the detected level is a vector level, i.e.
// CurrentLevel is not LevelScalar.
func HasVectorNT() bool {
	return currentLevel != LevelScalar
}

// NoSimdEnv checks the TIERMARK_NO_SIMD environment variable, which forces
// the reported level to LevelScalar regardless of detected CPU features. It
// does not change which access primitives are compiled in.
func NoSimdEnv() bool {
	val := os.Getenv("TIERMARK_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
