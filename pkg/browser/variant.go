package browser

// Variant identifies a family of Chrome-compatible browser builds that the
// resolver knows how to locate on the host.
type Variant string

const (
	// VariantStable is the standard Google Chrome release channel.
	VariantStable Variant = "stable"

	// VariantDev is the Google Chrome Dev/unstable channel.
	VariantDev Variant = "dev"

	// VariantChromium is an open Chromium build installed system-wide.
	VariantChromium Variant = "chromium"

	// VariantRuntime is the browser bundled with the language runtime,
	// located through the executable search path rather than fixed
	// install locations.
	VariantRuntime Variant = "runtime"

	// VariantHeadlessShell is a minimal headless content shell build.
	VariantHeadlessShell Variant = "headless-shell"
)

// String returns the variant name as used in configuration and logs.
func (v Variant) String() string {
	return string(v)
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantStable, VariantDev, VariantChromium, VariantRuntime, VariantHeadlessShell:
		return true
	}
	return false
}
