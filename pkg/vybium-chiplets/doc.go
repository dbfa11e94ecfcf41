// Package vybiumchiplets provides the public API for the chiplets bus
// permutation argument and the hash chiplet's protocol engine: the
// coordination layer that lets a STARK-based processor's main execution
// trace offload hashing work to a specialized sub-table and prove the
// offload was honest.
//
// # Features
//
// - Hash chiplet protocol engine: permute, merge, hash_span_block,
//   build_merkle_root, update_merkle_root
// - Chiplets bus: request/response bookkeeping and the b_chip grand-product
//   auxiliary column
// - Sibling-table running-product argument for Merkle updates
// - Poseidon hash function with Grain LFSR and Cauchy MDS
//
// # Quick Start
//
// Creating a hash chiplet and running a single permutation:
//
//	config := vybiumchiplets.DefaultConfig()
//	hc, err := vybiumchiplets.NewHashChiplet(config, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var state vybiumchiplets.HasherState
//	// ... populate state ...
//	addr, out, err := hc.Permute(state)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Recording the matching bus-side request and checking balance:
//
//	bus, err := vybiumchiplets.NewBus(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// ... RequestHasherSingle for every cycle the decoder issues a lookup ...
//	// ... ProvideHasherSingle for every lookup the hasher answers ...
//	column, err := bus.BuildAuxiliaryColumn(alpha, hc.Trace().TraceLen())
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// - pkg/vybium-chiplets/: Public API (this package)
// - internal/vybium-chiplets/chiplets/: Private implementation (not importable)
//
// Implementation details in internal/ can be refactored without breaking the
// public API.
package vybiumchiplets
