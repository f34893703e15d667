package engine

// DefaultSimulationCount is the fixed number of runs the Driver performs
// per spec §4.6: "The Driver runs exactly 100 Simulations serially (the
// product fixes the count)."
const DefaultSimulationCount = 100

// DriverResult is the aggregated output of a full batch (§4.6).
type DriverResult struct {
	TotalSims      int      `json:"total_sims"`
	Wins           int      `json:"wins"`
	WinsRatio      float64  `json:"wins_ratio"`
	AverageDeaths  float64  `json:"average_deaths"`
	AverageRounds  float64  `json:"average_rounds"`
	SimData        []Result `json:"sim_data"`
}

// Builder produces a fresh, independent set of Creature objects for one
// simulation run. The Driver calls it once per run so that no object graph
// is shared across simulations (§5).
type Builder func() (players, enemies []*Creature)

// Driver runs N independent simulations serially and aggregates their
// results (§4.6).
type Driver struct {
	Build           Builder
	SimulationCount int
}

// NewDriver creates a Driver that will run the fixed simulation count.
// A caller may set SimulationCount afterwards, as cmd/simcli's -count flag
// does; the HTTP and job handlers keep the default.
func NewDriver(build Builder) *Driver {
	return &Driver{Build: build, SimulationCount: DefaultSimulationCount}
}

// Run executes SimulationCount simulations sequentially and aggregates
// their results into a DriverResult.
func (d *Driver) Run() DriverResult {
	count := d.SimulationCount
	if count <= 0 {
		count = DefaultSimulationCount
	}

	result := DriverResult{
		TotalSims: count,
		SimData:   make([]Result, 0, count),
	}

	var totalDeaths, totalRounds int
	for i := 1; i <= count; i++ {
		players, enemies := d.Build()
		sim := NewSimulation(0, false)
		winner := sim.Run(players, enemies)

		if winner == "players" {
			result.Wins++
		}
		totalDeaths += sim.PlayersKilled
		totalRounds += sim.Rounds

		result.SimData = append(result.SimData, sim.ToResult(i))
	}

	result.WinsRatio = 100 * float64(result.Wins) / float64(count)
	result.AverageDeaths = float64(totalDeaths) / float64(count)
	result.AverageRounds = float64(totalRounds) / float64(count)
	return result
}
