// Command simcli runs a single Driver batch from a JSON simulation
// request read from a file or stdin, and prints the aggregated result as
// JSON. It exists for local testing and scripting against the engine
// without standing up the HTTP service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pf2e-sim/combat-engine/internal/engine"
)

func main() {
	path := flag.String("request", "", "path to a JSON simulation request (defaults to stdin)")
	count := flag.Int("count", engine.DefaultSimulationCount, "number of simulations to run")
	flag.Parse()

	data, err := readRequest(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "simcli:", err)
		os.Exit(1)
	}

	var req engine.SimulationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintln(os.Stderr, "simcli: decoding request:", err)
		os.Exit(1)
	}

	players, enemies, warnings, err := engine.BuildCreatures(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "simcli: building creatures:", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "simcli: warning:", w)
	}
	_ = players
	_ = enemies

	driver := engine.NewDriver(func() ([]*engine.Creature, []*engine.Creature) {
		players, enemies, _, _ := engine.BuildCreatures(req)
		return players, enemies
	})
	driver.SimulationCount = *count

	result := driver.Run()

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "simcli: encoding result:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func readRequest(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
