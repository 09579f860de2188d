package qpcr

// Document names. A name is also the feature label used when another
// document references this one.
const (
	NameAmpScore     = "amplification score"
	NameCqConf       = "cq confidence"
	NameQuantity     = "quantity"
	NameQuantityMean = "quantity mean"
	NameQuantitySD   = "quantity sd"
	NameCtMean       = "ct mean"
	NameCtSD         = "ct sd"
	NameCtSE         = "ct se"
	NameEqCtMean     = "equivalent ct mean"
	NameAdjEqCtMean  = "adjusted equivalent ct mean"
	NameDeltaCtMean  = "delta equivalent ct mean"
	NameDeltaCtSD    = "delta equivalent ct sd"
	NameDeltaCtSE    = "delta equivalent ct se"
	NameDeltaDeltaCt = "delta delta equivalent ct"
	NameRQ           = "rq"
	NameRQMin        = "rq min"
	NameRQMax        = "rq max"
	NameRnMean       = "rn mean"
	NameRnSD         = "rn sd"
	NameYIntercept   = "y intercept"
	NameRSquared     = "r^2"
	NameSlope        = "slope"
	NameEfficiency   = "efficiency"
)

// Raw features and the curve features referenced by quantity.
const (
	FeatureCt         = "cycle threshold result"
	FeatureRn         = "normalized reporter result"
	FeatureYIntercept = "Y-intercept"
	FeatureSlope      = "Slope"
)

// Builder identities used as memo keys. They differ from document names
// where two builders produce documents of the same name.
const (
	builderRelativeRQ    = "relative rq"
	builderRelativeRQMin = "relative rq min"
	builderRelativeRQMax = "relative rq max"
)
