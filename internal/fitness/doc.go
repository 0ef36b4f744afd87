// Package fitness turns PID gains into a scalar score for the search
// engines. Gains are composed with the plant into a unity-feedback loop,
// simulated, and scored either from step-response characteristics
// (Composite) or from the full trajectory against a setpoint (the cost
// table). Higher fitness is always better; costs are negated.
//
// Simulation failures never escape an Evaluator: they come back as an
// Evaluation carrying the error and the scorer's failure fitness, so the
// search keeps running over unstable regions of gain space.
package fitness
