// Package qpcr builds the calculated documents of a qPCR run.
//
// Raw well records (RawRecord) are parsed into WellItems with typed optional
// results, grouped into a View by (sample, target) and by target, and fed to
// the builder set in builders.go. Every builder goes through the run's memo
// table, so a shared intermediate such as "ct mean" for one group is one node
// no matter how many downstream values reference it.
//
// Lineage of the relative quantification chain:
//
//	cycle threshold result (raw)
//	  └─ ct mean ─ equivalent ct mean ─ adjusted equivalent ct mean
//	                       └─────────┬──────────┘ (first available)
//	                         delta equivalent ct mean (target, ref target)
//	                                 └─ delta delta equivalent ct (sample, ref sample)
//	                                          └─ rq ─ rq min, rq max
//
// Convert runs one experiment iterator (standard curve, relative standard
// curve, comparative Ct, presence/absence) and returns the flattened,
// deduplicated document list, dependencies first.
package qpcr
