package moduledef

import "strings"

// FeatureSet is a bitset of the proposal gates the Engine is configured
// with (spec.md §6, "Enabled feature gates"). It is a uint64 bitset in the
// style of wazero's Features type: each feature owns one bit, starting at
// bit zero, and the zero-value FeatureSet means "nothing enabled".
type FeatureSet uint64

const (
	FeatureMutableGlobal FeatureSet = 1 << iota
	FeatureSignExtensionOps
	FeatureSaturatingFloatToInt
	FeatureMultiValue
	FeatureReferenceTypes
	FeatureBulkMemoryOperations
	FeatureTailCall
	FeatureMultiMemory
	FeatureMemory64
	FeatureExtendedConst
	FeatureWideArithmetic
	FeatureCustomPageSizes
	FeatureSIMD
)

var featureNames = []struct {
	bit  FeatureSet
	name string
}{
	{FeatureMutableGlobal, "mutable-global"},
	{FeatureSignExtensionOps, "sign-extension-ops"},
	{FeatureSaturatingFloatToInt, "nontrapping-float-to-int-conversion"},
	{FeatureMultiValue, "multi-value"},
	{FeatureReferenceTypes, "reference-types"},
	{FeatureBulkMemoryOperations, "bulk-memory-operations"},
	{FeatureTailCall, "tail-call"},
	{FeatureMultiMemory, "multi-memory"},
	{FeatureMemory64, "memory64"},
	{FeatureExtendedConst, "extended-const"},
	{FeatureWideArithmetic, "wide-arithmetic"},
	{FeatureCustomPageSizes, "custom-page-sizes"},
	{FeatureSIMD, "simd"},
}

// Get reports whether feature is enabled in fs.
func (fs FeatureSet) Get(feature FeatureSet) bool { return fs&feature != 0 }

// Set returns a copy of fs with feature enabled or disabled per value.
func (fs FeatureSet) Set(feature FeatureSet, value bool) FeatureSet {
	if value {
		return fs | feature
	}
	return fs &^ feature
}

// String renders the enabled feature names, space-separated, in declaration
// order; an empty set renders as "".
func (fs FeatureSet) String() string {
	var sb strings.Builder
	for _, f := range featureNames {
		if fs.Get(f.bit) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.name)
		}
	}
	return sb.String()
}

// WasmV1FeatureSet is the default feature set: mutable-global,
// sign-extension-ops, nontrapping-float-to-int-conversion, multi-value,
// reference-types and bulk-memory-operations. Tail-call, multi-memory,
// memory64, extended-const, wide-arithmetic, custom-page-sizes and SIMD are
// not in it.
const WasmV1FeatureSet = FeatureMutableGlobal | FeatureSignExtensionOps | FeatureSaturatingFloatToInt |
	FeatureMultiValue | FeatureReferenceTypes | FeatureBulkMemoryOperations
