package sim

// Response is an output trajectory sampled on a time grid.
type Response struct {
	Times   []float64
	Outputs []float64
}

// Final returns the last output sample.
func (r *Response) Final() float64 {
	if r == nil || len(r.Outputs) == 0 {
		return 0
	}
	return r.Outputs[len(r.Outputs)-1]
}

// Info holds the classic step-response characteristics. Overshoot is in
// percent of the steady-state value; times share the grid's unit.
type Info struct {
	RiseTime         float64
	SettlingTime     float64
	Overshoot        float64
	SteadyStateValue float64
	Peak             float64
	PeakTime         float64
}
