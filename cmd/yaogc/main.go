//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/protocol"
)

func main() {
	garbler := flag.Bool("g", false, "Garbler / Evaluator mode")
	file := flag.String("c", "", "Circuit bundle file")
	id := flag.String("id", "", "Circuit id within the bundle")
	aBitsFlag := flag.String("a", "", "Alice's input bits, e.g. 1010")
	bBitsFlag := flag.String("b", "", "Bob's input bits, e.g. 0101")
	addr := flag.String("addr", ":8080", "Peer address (dial as Garbler, listen as Evaluator)")
	noOT := flag.Bool("no-ot", false, "Disable Oblivious Transfer (insecure, test only)")
	verbose := flag.Bool("v", false, "Verbose output")
	local := flag.String("local", "", "Run without a network peer: \"table\" or \"circuit\"")
	flag.Parse()

	if len(*file) == 0 {
		fmt.Println("circuit bundle file not specified (-c)")
		os.Exit(1)
	}
	bundle, err := circuit.Parse(*file)
	if err != nil {
		fmt.Printf("failed to parse circuit bundle '%s': %s\n", *file, err)
		os.Exit(1)
	}
	if len(*id) == 0 {
		fmt.Println("circuit id not specified (-id)")
		os.Exit(1)
	}
	circ, err := bundle.Lookup(*id)
	if err != nil {
		fmt.Printf("circuit lookup failed: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("circuit: %s\n", circ)

	aBits := parseBits(*aBitsFlag)
	bBits := parseBits(*bBitsFlag)
	enableOT := !*noOT

	if len(*local) > 0 {
		if err := runLocal(*local, bundle, *id); err != nil {
			fmt.Printf("error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	if *garbler {
		err = protocol.DialGarbler(*addr, circ, protocol.BitVector(aBits), enableOT, *verbose)
	} else {
		var result map[circuit.Wire]bool
		result, err = protocol.ListenEvaluator(*addr, circ, bBits, enableOT, *verbose)
		if err == nil {
			err = protocol.PrintSink{}.Output(result)
		}
	}
	if err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}

func parseBits(s string) []bool {
	bits := make([]bool, len(s))
	for i, c := range s {
		bits[i] = c == '1'
	}
	return bits
}

func runLocal(mode string, bundle *circuit.Bundle, id string) error {
	switch mode {
	case "table":
		return protocol.RunLocalTable(os.Stdout, bundle, id)
	case "circuit":
		return protocol.RunLocal(os.Stdout, bundle, id)
	default:
		return fmt.Errorf("unknown -local mode %q, want \"table\" or \"circuit\"", mode)
	}
}
