// Package textutil holds Unicode-aware string helpers shared by the acquirer
// and the delivery surfaces.
package textutil
