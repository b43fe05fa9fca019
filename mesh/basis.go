// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

// Basis evaluates the multilinear Lagrange basis functions of an element
// of dimension len(xi) at the given xi, writing the 2^len(xi) weights
// into phi. If dphi is non-nil it receives the derivatives, with
// dphi[i*len(xi)+j] = d phi_i / d xi_j.
func Basis(xi []float64, phi, dphi []float64) {
	dim := len(xi)
	nn := NumNodes(dim)
	for i := 0; i < nn; i++ {
		w := 1.0
		for d := 0; d < dim; d++ {
			if i&(1<<d) != 0 {
				w *= xi[d]
			} else {
				w *= 1 - xi[d]
			}
		}
		phi[i] = w
		if dphi == nil {
			continue
		}
		for j := 0; j < dim; j++ {
			dw := 1.0
			for d := 0; d < dim; d++ {
				on := i&(1<<d) != 0
				switch {
				case d == j && on:
				case d == j:
					dw = -dw
				case on:
					dw *= xi[d]
				default:
					dw *= 1 - xi[d]
				}
			}
			dphi[i*dim+j] = dw
		}
	}
}
