// Package matching classifies card corner regions by template matching.
//
// Every template is slid over the query region and scored at each placement
// with the zero-mean normalized cross-correlation
//
//	R(x,y) = sum(T'(i,j) * I'(x+i,y+j)) / sqrt(sum(T'^2) * sum(I'^2))
//
// where T' and I' are the template and the region window with their means
// removed. The best placement score of each template is compared against a
// fixed floor; the highest template above the floor names the region, and a
// region no template clears is labelled Unknown with score 0.
//
// # Templates
//
// A TemplateSet holds two independent groups: ranks 1 to 13 and suits c, d,
// h and s, each with two variants. Sets are built once, usually with
// LoadStore, and are immutable afterwards, so a single set can back any
// number of concurrent matchers.
//
// # Determinism
//
// Templates are tried in set order (label-major, then variant) and a later
// template only replaces the current best with a strictly greater score, so
// ties keep the first template seen.
package matching
