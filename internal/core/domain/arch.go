package domain

import (
	"runtime"
	"slices"

	"go.trai.ch/zerr"
)

// Architecture is a CPU architecture name as understood by compilers.
type Architecture string

// Well-known architectures.
const (
	ArchX86_64 Architecture = "x86_64"
	ArchArm64  Architecture = "arm64"
	ArchI386   Architecture = "i386"

	// ArchAll expands to every configured architecture.
	ArchAll = "all"
)

// HostArchitecture returns the architecture of the running process.
func HostArchitecture() Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return ArchX86_64
	case "arm64":
		return ArchArm64
	case "386":
		return ArchI386
	default:
		return Architecture(runtime.GOARCH)
	}
}

// ExpandArchitectures turns the requested names into a duplicate-free list.
// "all" expands to supported; an empty request means the host architecture.
// Names outside supported are rejected when supported is not empty.
func ExpandArchitectures(requested []string, supported []Architecture) ([]Architecture, error) {
	if len(requested) == 0 {
		return []Architecture{HostArchitecture()}, nil
	}

	var out []Architecture
	add := func(a Architecture) {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}

	for _, name := range requested {
		if name == ArchAll {
			if len(supported) == 0 {
				add(HostArchitecture())
				continue
			}
			for _, a := range supported {
				add(a)
			}
			continue
		}
		a := Architecture(name)
		if len(supported) > 0 && !slices.Contains(supported, a) {
			return nil, zerr.With(zerr.Wrap(ErrUnsupportedArchitecture, "architecture is not configured"), "arch", name)
		}
		add(a)
	}
	return out, nil
}

// PrimaryArchitecture picks the architecture used for targets built only once:
// the host architecture when requested, otherwise the first one.
func PrimaryArchitecture(archs []Architecture) Architecture {
	host := HostArchitecture()
	if len(archs) == 0 || slices.Contains(archs, host) {
		return host
	}
	return archs[0]
}
